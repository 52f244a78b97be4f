package ui

import (
	"github.com/wagoodman/go-partybus"
)

// UI renders events from the bus for the duration of a single command.
type UI interface {
	Setup(unsubscribe func() error) error
	partybus.Handler
	Teardown(force bool) error
}
