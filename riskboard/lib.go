/*
Package riskboard prioritizes vulnerability findings by risk and tracks them through triage. The store, scoring,
import and reporting packages live beneath it; this package only wires the ambient logger and event bus.
*/
package riskboard

import (
	"github.com/wagoodman/go-partybus"

	"github.com/anchore/go-logger"
	"github.com/anchore/riskboard/internal/bus"
	"github.com/anchore/riskboard/internal/log"
)

// SetLogger sets the logger object used for all riskboard logging calls.
func SetLogger(l logger.Logger) {
	log.Set(l)
}

// SetBus sets the event bus for all riskboard library bus publish events onto (in-library subscriptions are not allowed).
func SetBus(b partybus.Publisher) {
	bus.Set(b)
}
