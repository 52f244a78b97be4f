package event

import "github.com/wagoodman/go-partybus"

const (
	typePrefix    = "riskboard"
	cliTypePrefix = typePrefix + "-cli"

	// FindingImportStarted is published when a batch of findings starts importing; the value is a monitor.Import.
	FindingImportStarted partybus.EventType = typePrefix + "-finding-import-started"

	// FindingsMutated is published after a committed store mutation; the value is a monitor.Mutation.
	FindingsMutated partybus.EventType = typePrefix + "-findings-mutated"

	// CLIReport is a partybus event that a final report should be written to the terminal.
	CLIReport partybus.EventType = cliTypePrefix + "-report"

	// CLINotification is a partybus event that a user-facing message should be shown.
	CLINotification partybus.EventType = cliTypePrefix + "-notification"

	// CLIExit is a partybus event that the command is done and any UI should be torn down.
	CLIExit partybus.EventType = cliTypePrefix + "-exit-event"
)
