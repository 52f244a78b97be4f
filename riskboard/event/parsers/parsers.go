package parsers

import (
	"fmt"

	"github.com/wagoodman/go-partybus"

	"github.com/anchore/riskboard/riskboard/event"
	"github.com/anchore/riskboard/riskboard/event/monitor"
)

type ErrBadPayload struct {
	Type  partybus.EventType
	Field string
	Value interface{}
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("event='%s' has bad event payload field='%v': '%+v'", string(e.Type), e.Field, e.Value)
}

func newPayloadErr(t partybus.EventType, field string, value interface{}) error {
	return &ErrBadPayload{
		Type:  t,
		Field: field,
		Value: value,
	}
}

func checkEventType(actual, expected partybus.EventType) error {
	if actual != expected {
		return newPayloadErr(expected, "Type", actual)
	}
	return nil
}

func ParseFindingImportStarted(e partybus.Event) (*monitor.Import, error) {
	if err := checkEventType(e.Type, event.FindingImportStarted); err != nil {
		return nil, err
	}

	mon, ok := e.Value.(monitor.Import)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &mon, nil
}

func ParseFindingsMutated(e partybus.Event) (*monitor.Mutation, error) {
	if err := checkEventType(e.Type, event.FindingsMutated); err != nil {
		return nil, err
	}

	mon, ok := e.Value.(monitor.Mutation)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &mon, nil
}

func ParseCLIReport(e partybus.Event) (string, error) {
	if err := checkEventType(e.Type, event.CLIReport); err != nil {
		return "", err
	}

	report, ok := e.Value.(string)
	if !ok {
		return "", newPayloadErr(e.Type, "Value", e.Value)
	}

	return report, nil
}

func ParseCLINotification(e partybus.Event) (string, error) {
	if err := checkEventType(e.Type, event.CLINotification); err != nil {
		return "", err
	}

	msg, ok := e.Value.(string)
	if !ok {
		return "", newPayloadErr(e.Type, "Value", e.Value)
	}

	return msg, nil
}
