package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/lablink/internal/apierror"
	"github.com/example/lablink/internal/config"
	"github.com/example/lablink/internal/emulator"
	"github.com/example/lablink/internal/logging"
)

var version = "dev"

type options struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "lablink",
		Short:         "Drive the LabLink backend emulator from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "",
		"set the logging level (can be one of: debug, info, warn, error)")

	cmd.AddCommand(newInvokeCmd(opts))
	cmd.AddCommand(newDumpCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	cmd.AddCommand(newResetCmd(opts))
	cmd.AddCommand(newConflictsCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		// Skip configuration loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lablink %s (built with %s)\n", version, runtime.Version())
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "replace the stored state with the seeded default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEmulator(cmd, opts, func(ctx context.Context, emu *emulator.Emulator) error {
				if err := emu.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "state reset")
				return nil
			})
		},
	}
}

// withEmulator opens the configured emulator for the duration of fn.
func withEmulator(cmd *cobra.Command, opts *options, fn func(ctx context.Context, emu *emulator.Emulator) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.New(opts.cfg.Log.Format, opts.cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx = logging.ContextWithLogger(ctx, logger)

	emu, err := emulator.Open(ctx, opts.cfg, emulator.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := emu.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close emulator: %w", cerr)
		}
	}()

	return fn(ctx, emu)
}

// loginAdmin returns headers for the configured administrator.
func loginAdmin(ctx context.Context, emu *emulator.Emulator, cfg config.Config) (map[string]string, error) {
	resp, apiErr := emu.Invoke(ctx, "POST", "/auth/login", map[string]any{
		"email":    cfg.Admin.Email,
		"password": cfg.Admin.Password,
	}, nil)
	if apiErr != nil {
		return nil, &apiFailure{err: fmt.Errorf("admin login: %w", apiErr)}
	}
	token, err := accessToken(resp.Body)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func accessToken(body any) (string, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.AccessToken == "" {
		return "", fmt.Errorf("login response carries no access token")
	}
	return out.AccessToken, nil
}

// writeDocument renders v as indented JSON or YAML.
func writeDocument(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}
}

// reportAPIError prints the normalized failure and marks the command as an
// API failure.
func reportAPIError(w io.Writer, apiErr *apierror.Error) error {
	if err := writeDocument(w, "json", map[string]any{"error": apiErr}); err != nil {
		return err
	}
	return &apiFailure{err: apiErr}
}
