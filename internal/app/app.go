// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package app owns the long-lived process lifecycle: config watching, reload
// wiring, signal handling and the console session itself.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/rtcterm/internal/config"
	"github.com/ManuGH/rtcterm/internal/console"
	xglog "github.com/ManuGH/rtcterm/internal/log"
)

// ErrMissingSession reports an App assembled without a console session.
var ErrMissingSession = errors.New("app: console session is required")

// App owns the runtime lifecycle and delegates operator interaction to the
// console session.
type App struct {
	logger       zerolog.Logger
	session      *console.Session
	cfgHolder    *config.ConfigHolder
	reloadSignal os.Signal
}

// New creates the app orchestrator. holder may be nil when hot reload is not
// wanted, for example in tests.
func New(logger zerolog.Logger, session *console.Session, holder *config.ConfigHolder) *App {
	return &App{
		logger:       logger,
		session:      session,
		cfgHolder:    holder,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or the session fails. A cancelled context is a clean shutdown,
// not an error.
func (a *App) Run(ctx context.Context) error {
	if a.session == nil {
		return ErrMissingSession
	}

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: a console without hot reload still works.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "config.watcher_start_failed").
				Msg("failed to start config watcher")
		}

		// Apply every config swap to the live process. Only the log level
		// can change without a restart; the holder logs the rest.
		applyCh := make(chan config.Config, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					xglog.SetLevel(cfg.LogLevel)
					a.logger.Info().
						Str(xglog.FieldEvent, "config.applied").
						Str("log_level", cfg.LogLevel).
						Msg("reloaded config applied")
				}
			}
		})

		// Manual reload trigger.
		if a.reloadSignal != nil {
			g.Go(func() error {
				hupChan := make(chan os.Signal, 1)
				signal.Notify(hupChan, a.reloadSignal)
				defer signal.Stop(hupChan)

				for {
					select {
					case <-ctx.Done():
						return nil
					case <-hupChan:
						a.logger.Info().
							Str(xglog.FieldEvent, "config.reload_signal").
							Str("signal", a.reloadSignal.String()).
							Msg("received reload signal, reloading config")

						if err := a.cfgHolder.Reload(context.Background()); err != nil {
							a.logger.Warn().
								Err(err).
								Str(xglog.FieldEvent, "config.reload_failed").
								Msg("config reload failed")
						}
					}
				}
			})
		}
	}

	// Operator session lifecycle.
	g.Go(func() error {
		err := a.session.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
