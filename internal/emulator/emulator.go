// Package emulator assembles the LabLink backend: state store, services,
// router and error normalizer behind a single Invoke entry point.
package emulator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/lablink/internal/api"
	"github.com/example/lablink/internal/apierror"
	"github.com/example/lablink/internal/application"
	"github.com/example/lablink/internal/codec"
	"github.com/example/lablink/internal/config"
	"github.com/example/lablink/internal/logging"
	"github.com/example/lablink/internal/metrics"
	"github.com/example/lablink/internal/persistence"
	"github.com/example/lablink/internal/persistence/sqlite"
	"github.com/example/lablink/internal/statestore"
)

// Options overrides collaborators normally derived from config.Config.
type Options struct {
	// Logger defaults to a logger built from the log settings.
	Logger *slog.Logger
	// Registerer receives the collectors when metrics are enabled. It
	// defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Slot replaces the configured backend. The emulator does not close it.
	Slot persistence.Slot
	// IDGenerator and TokenGenerator default to random UUIDs.
	IDGenerator    func() string
	TokenGenerator func() string
	// Hasher defaults to argon2id with application.DefaultArgon2idParams.
	Hasher application.PasswordHasher
}

// Emulator serves calls one at a time against a durable state snapshot.
type Emulator struct {
	mu       sync.Mutex
	store    *statestore.Store
	defaults func() persistence.State
	router   *api.Router
	notifier apierror.Notifier
	logger   *slog.Logger
	closers  []io.Closer
}

// Open wires an emulator from cfg.
func Open(ctx context.Context, cfg config.Config, opts Options) (*Emulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.New(cfg.Log.Format, cfg.Log.Level, os.Stderr)
		if err != nil {
			return nil, err
		}
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		var err error
		recorder, err = metrics.New(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	stateCodec, err := codec.ByName(cfg.State.Codec)
	if err != nil {
		return nil, err
	}

	hasher := opts.Hasher
	if hasher == nil {
		hasher = application.NewPasswordHasher(application.DefaultArgon2idParams)
	}
	defaults, err := application.DefaultState(application.AdminAccount{
		ID:       application.DefaultAdmin().ID,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	}, hasher)
	if err != nil {
		return nil, err
	}

	e := &Emulator{defaults: defaults, logger: logger}

	slot := opts.Slot
	if slot == nil {
		slot, err = openSlot(ctx, cfg.State)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, slot)
	}

	e.store, err = statestore.Open(ctx, slot, statestore.Options{
		Codec:    stateCodec,
		Defaults: defaults,
		Logger:   logger,
		Metrics:  recorder,
	})
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	ids := opts.IDGenerator
	if ids == nil {
		ids = uuid.NewString
	}
	tokens := opts.TokenGenerator
	if tokens == nil {
		tokens = uuid.NewString
	}

	auth := application.NewAuthServiceWithLogger(e.store, ids, tokens, hasher, logger)
	e.router = api.NewRouter(api.RouterConfig{
		Auth:         api.NewAuthHandler(auth),
		Laboratories: api.NewLaboratoryHandler(application.NewLaboratoryServiceWithLogger(e.store, ids, logger)),
		Resources:    api.NewResourceHandler(application.NewResourceServiceWithLogger(e.store, ids, logger)),
		Reservations: api.NewReservationHandler(application.NewReservationServiceWithLogger(e.store, ids, recorder, logger)),
		Sessions:     auth,
		Middleware: []api.Middleware{
			api.RequestLogger(logger),
			api.Metrics(recorder),
		},
	})

	logger.InfoContext(ctx, "emulator ready",
		"backend", backendName(cfg.State, opts.Slot),
		"codec", stateCodec.Name(),
		"revision", e.store.Revision(),
	)
	return e, nil
}

func openSlot(ctx context.Context, cfg config.StateConfig) (persistence.Slot, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return persistence.NewMemorySlot(), nil
	case config.BackendSQLite:
		return sqlite.Open(ctx, cfg.DSN, cfg.Key)
	default:
		return nil, fmt.Errorf("unsupported state backend %q", cfg.Backend)
	}
}

func backendName(cfg config.StateConfig, override persistence.Slot) string {
	if override != nil {
		return "custom"
	}
	return cfg.Backend
}

// Invoke routes one call. Calls run to completion one at a time. A failure is
// normalized exactly once; UNAUTHORIZED failures reach every observer.
func (e *Emulator) Invoke(ctx context.Context, method, path string, body any, headers map[string]string) (api.Response, *apierror.Error) {
	resp, err := e.route(ctx, api.Request{Method: method, Path: path, Body: body, Headers: headers})
	if err != nil {
		return api.Response{}, e.notifier.Normalize(err)
	}
	return resp, nil
}

func (e *Emulator) route(ctx context.Context, req api.Request) (api.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.router.Route(ctx, req)
}

// OnUnauthorized registers fn for UNAUTHORIZED failures and returns a
// function that removes it.
func (e *Emulator) OnUnauthorized(fn apierror.Observer) (unsubscribe func()) {
	return e.notifier.Subscribe(fn)
}

// Snapshot returns a deep copy of the current state.
func (e *Emulator) Snapshot() persistence.State {
	return e.store.Snapshot()
}

// Reset replaces the state with the default shape, dropping every session.
func (e *Emulator) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.store.Update(ctx, func(state *persistence.State) error {
		*state = e.defaults()
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	e.logger.InfoContext(ctx, "state reset")
	return nil
}

// Close releases the slot opened from configuration.
func (e *Emulator) Close() error {
	var result *multierror.Error
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	e.closers = nil
	return result.ErrorOrNil()
}
