package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/anchore/riskboard/internal/bus"
	"github.com/anchore/riskboard/internal/config"
	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/internal/ui"
	"github.com/anchore/riskboard/riskboard/activity"
	"github.com/anchore/riskboard/riskboard/presenter"
	"github.com/anchore/riskboard/riskboard/presenter/json"
	"github.com/anchore/riskboard/riskboard/store"
	"github.com/anchore/riskboard/riskboard/store/memory"
	"github.com/anchore/riskboard/riskboard/store/sqlstore"
)

// work is the body of a command. The returned presenter (if any) renders the command's result.
type work func(ctx context.Context, s store.Store) (presenter.Presenter, error)

// run opens the configured store and executes the work in the background while the event loop renders bus events
// (progress, the final report) until the work is done or the process is interrupted.
func run(w work) error {
	writer, closeReport, err := reportWriter()
	if err != nil {
		return err
	}

	s, err := openStore(appConfig)
	if err != nil {
		_ = closeReport()
		return err
	}

	ctx, cancel := context.WithCancel(store.WithActor(context.Background(), actorName()))
	defer cancel()

	errs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(errs)
		defer bus.Exit()

		if err := present(w(ctx, s)); err != nil {
			errs <- err
		}
	}()

	retErr := eventLoop(errs, setupSignals(), eventSubscription, cancel, ui.NewLoggerUI(writer, os.Stderr, appConfig.Quiet))

	// an interrupt returns from the loop early; let the (now canceled) work wind down before closing the store
	<-done

	if err := s.Close(); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("unable to close store: %w", err))
	}
	if err := closeReport(); err != nil {
		retErr = multierror.Append(retErr, err)
	}
	return retErr
}

func present(p presenter.Presenter, err error) error {
	if err != nil || p == nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.Present(&buf); err != nil {
		return fmt.Errorf("unable to render output: %w", err)
	}
	bus.Report(buf.String())
	return nil
}

func openStore(cfg *config.Application) (store.Store, error) {
	opts := []store.Option{
		store.WithWeights(cfg.Risk.Weights()),
		store.WithActivityMiddleware(activity.Logged),
	}

	switch cfg.DB.Backend {
	case config.MemoryBackend:
		log.Debug("using in-memory store (nothing will be persisted)")
		return memory.New(opts...), nil
	default:
		log.WithFields("path", cfg.DB.Path, "reset", cfg.DB.Reset).Debug("opening sqlite store")
		s, err := sqlstore.Open(sqlstore.Config{Path: cfg.DB.Path, Debug: cfg.DB.Debug, Reset: cfg.DB.Reset}, opts...)
		if err != nil {
			return nil, fmt.Errorf("unable to open store: %w", err)
		}
		return s, nil
	}
}

// messagePresenter renders a one-line outcome.
type messagePresenter struct {
	message string
}

func (p messagePresenter) Present(w io.Writer) error {
	_, err := fmt.Fprintln(w, p.message)
	return err
}

// outcomePresenter shows doc as JSON when JSON output was requested, otherwise the formatted message.
func outcomePresenter(f presenter.Format, doc any, format string, args ...interface{}) presenter.Presenter {
	if f == presenter.JSONFormat {
		return json.NewPresenter(doc)
	}
	return messagePresenter{message: fmt.Sprintf(format, args...)}
}
