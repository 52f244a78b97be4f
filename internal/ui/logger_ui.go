package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/gookit/color"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/event"
	"github.com/anchore/riskboard/riskboard/event/monitor"
	"github.com/anchore/riskboard/riskboard/event/parsers"
)

type loggerUI struct {
	unsubscribe  func() error
	reportOutput io.Writer
	notifyOutput io.Writer
	quiet        bool

	lock    sync.Mutex
	imports []monitor.Import
}

// NewLoggerUI writes progress to the application logger, the final report to reportWriter and user notifications to
// notifyWriter (unless quiet).
func NewLoggerUI(reportWriter, notifyWriter io.Writer, quiet bool) UI {
	return &loggerUI{
		reportOutput: reportWriter,
		notifyOutput: notifyWriter,
		quiet:        quiet,
	}
}

func (l *loggerUI) Setup(unsubscribe func() error) error {
	l.unsubscribe = unsubscribe
	return nil
}

func (l *loggerUI) Handle(e partybus.Event) error {
	switch e.Type {
	case event.FindingImportStarted:
		mon, err := parsers.ParseFindingImportStarted(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		l.lock.Lock()
		l.imports = append(l.imports, *mon)
		l.lock.Unlock()

	case event.FindingsMutated:
		mut, err := parsers.ParseFindingsMutated(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		log.WithFields("entity", mut.EntityType, "action", mut.Action, "count", mut.Count).Debug("store updated")

	case event.CLIReport:
		report, err := parsers.ParseCLIReport(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		if _, err := io.WriteString(l.reportOutput, report); err != nil {
			return fmt.Errorf("unable to write report: %w", err)
		}

	case event.CLINotification:
		msg, err := parsers.ParseCLINotification(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		if !l.quiet {
			_, _ = fmt.Fprintln(l.notifyOutput, color.Magenta.Sprint(msg))
		}

	case event.CLIExit:
		l.logImports()
		// this is the last expected event, stop listening to events
		return l.unsubscribe()
	}
	return nil
}

func (l *loggerUI) logImports() {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, mon := range l.imports {
		fields := []interface{}{
			"rows", mon.RowsProcessed.Current(),
			"created", mon.RowsCreated.Current(),
		}
		if err := mon.RowsProcessed.Error(); err != nil && !progress.IsErrCompleted(err) {
			log.WithFields(append(fields, "error", err)...).Warn("import stopped early")
			continue
		}
		log.WithFields(fields...).Info("import finished")
	}
	l.imports = nil
}

func (l *loggerUI) Teardown(_ bool) error {
	return nil
}
