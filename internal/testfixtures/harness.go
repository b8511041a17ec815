package testfixtures

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/lablink/internal/api"
	"github.com/example/lablink/internal/apierror"
	"github.com/example/lablink/internal/application"
	"github.com/example/lablink/internal/config"
	"github.com/example/lablink/internal/emulator"
	"github.com/example/lablink/internal/logging"
	"github.com/example/lablink/internal/persistence"
)

// Seeded administrator credentials used by Default configurations.
const (
	AdminEmail    = "admin@lablink.test"
	AdminPassword = "Admin12345!"
)

// FastHasher returns an argon2id hasher cheap enough for tests.
func FastHasher() application.PasswordHasher {
	return application.NewPasswordHasher(application.Argon2idParams{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	})
}

// Harness runs an emulator with deterministic identifiers.
type Harness struct {
	Emulator *emulator.Emulator
	Config   config.Config
	IDs      *IDGenerator
	Tokens   *IDGenerator
}

// HarnessOption configures a Harness.
type HarnessOption func(*harnessSettings)

type harnessSettings struct {
	cfg     config.Config
	options emulator.Options
}

// WithSlot backs the emulator with slot instead of a fresh memory slot.
func WithSlot(slot persistence.Slot) HarnessOption {
	return func(s *harnessSettings) { s.options.Slot = slot }
}

// WithConfig lets a test adjust the configuration before the emulator opens.
func WithConfig(fn func(cfg *config.Config)) HarnessOption {
	return func(s *harnessSettings) { fn(&s.cfg) }
}

// WithRegisterer enables metrics on reg.
func WithRegisterer(reg prometheus.Registerer) HarnessOption {
	return func(s *harnessSettings) {
		s.cfg.Metrics.Enabled = true
		s.options.Registerer = reg
	}
}

// NewHarness opens an emulator on an in-memory slot and closes it when the
// test finishes.
func NewHarness(tb testing.TB, opts ...HarnessOption) *Harness {
	tb.Helper()

	h := &Harness{
		IDs:    NewIDGenerator(""),
		Tokens: NewIDGenerator("token"),
	}
	settings := harnessSettings{cfg: config.Default()}
	settings.cfg.State.Backend = config.BackendMemory
	settings.options = emulator.Options{
		Logger:         logging.Discard(),
		IDGenerator:    h.IDs.NextFunc(),
		TokenGenerator: h.Tokens.NextFunc(),
		Hasher:         FastHasher(),
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.options.Slot == nil && settings.cfg.State.Backend == config.BackendMemory {
		settings.options.Slot = persistence.NewMemorySlot()
	}

	emu, err := emulator.Open(context.Background(), settings.cfg, settings.options)
	if err != nil {
		tb.Fatalf("failed to open emulator: %v", err)
	}
	tb.Cleanup(func() { _ = emu.Close() })

	h.Emulator = emu
	h.Config = settings.cfg
	return h
}

// Invoke forwards to the emulator with a background context.
func (h *Harness) Invoke(method, path string, body any, headers map[string]string) (api.Response, *apierror.Error) {
	return h.Emulator.Invoke(context.Background(), method, path, body, headers)
}

// MustInvoke fails the test when the call does not succeed.
func (h *Harness) MustInvoke(tb testing.TB, method, path string, body any, headers map[string]string) api.Response {
	tb.Helper()
	resp, apiErr := h.Invoke(method, path, body, headers)
	if apiErr != nil {
		tb.Fatalf("%s %s failed: %v", method, path, apiErr)
	}
	return resp
}

// Login authenticates and returns headers carrying the bearer token.
func (h *Harness) Login(tb testing.TB, email, password string) map[string]string {
	tb.Helper()
	resp := h.MustInvoke(tb, "POST", "/auth/login", map[string]any{"email": email, "password": password}, nil)
	token, ok := resp.Body.(api.TokenDTO)
	if !ok || token.AccessToken == "" {
		tb.Fatalf("login returned unexpected body %#v", resp.Body)
	}
	return BearerHeaders(token.AccessToken)
}

// AdminHeaders logs in as the seeded administrator.
func (h *Harness) AdminHeaders(tb testing.TB) map[string]string {
	tb.Helper()
	return h.Login(tb, h.Config.Admin.Email, h.Config.Admin.Password)
}

// BearerHeaders builds an Authorization header map.
func BearerHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
