package bus

import (
	"github.com/wagoodman/go-partybus"

	"github.com/anchore/riskboard/riskboard/event"
	"github.com/anchore/riskboard/riskboard/event/monitor"
)

func Exit() {
	Publish(partybus.Event{
		Type: event.CLIExit,
	})
}

func Report(report string) {
	Publish(partybus.Event{
		Type:  event.CLIReport,
		Value: report,
	})
}

func Notify(message string) {
	Publish(partybus.Event{
		Type:  event.CLINotification,
		Value: message,
	})
}

func PublishMutation(entityType, action string, count int) {
	Publish(partybus.Event{
		Type:   event.FindingsMutated,
		Source: entityType,
		Value: monitor.Mutation{
			EntityType: entityType,
			Action:     action,
			Count:      count,
		},
	})
}
