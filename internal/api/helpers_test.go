package api

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/lablink/internal/application"
	"github.com/example/lablink/internal/logging"
	"github.com/example/lablink/internal/persistence"
	"github.com/example/lablink/internal/statestore"
)

const (
	adminEmail    = "admin@lablink.test"
	adminPassword = "Admin12345!"
)

type counter struct{ n atomic.Int64 }

func (c *counter) next() string { return fmt.Sprintf("%d", c.n.Add(1)) }

type harness struct {
	router *Router
	store  *statestore.Store
}

func newHarness(t *testing.T, middleware ...Middleware) *harness {
	t.Helper()
	hasher := application.NewPasswordHasher(application.Argon2idParams{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16,
	})
	defaults, err := application.DefaultState(application.DefaultAdmin(), hasher)
	require.NoError(t, err)

	store, err := statestore.Open(context.Background(), persistence.NewMemorySlot(), statestore.Options{
		Defaults: defaults,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)

	ids := &counter{}
	tokens := &counter{}
	auth := application.NewAuthService(store, ids.next, func() string { return "token-" + tokens.next() }, hasher)

	router := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(auth),
		Laboratories: NewLaboratoryHandler(application.NewLaboratoryService(store, ids.next)),
		Resources:    NewResourceHandler(application.NewResourceService(store, ids.next)),
		Reservations: NewReservationHandler(application.NewReservationService(store, ids.next)),
		Sessions:     auth,
		Middleware:   middleware,
	})
	return &harness{router: router, store: store}
}

func (h *harness) call(t *testing.T, method, path string, body any, headers map[string]string) (Response, error) {
	t.Helper()
	return h.router.Route(context.Background(), Request{Method: method, Path: path, Body: body, Headers: headers})
}

func (h *harness) login(t *testing.T) map[string]string {
	t.Helper()
	resp, err := h.call(t, "POST", "/auth/login", map[string]any{"email": adminEmail, "password": adminPassword}, nil)
	require.NoError(t, err)
	token := resp.Body.(TokenDTO).AccessToken
	require.NotEmpty(t, token)
	return map[string]string{"Authorization": "Bearer " + token}
}
