package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/lablink/internal/api"
	"github.com/example/lablink/internal/emulator"
)

// seedFile lists entities to create through the regular routes. Resources and
// reservations refer to laboratories and resources of the same file by name.
type seedFile struct {
	Laboratories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Location    string `yaml:"location"`
	} `yaml:"laboratories"`
	Resources []struct {
		Name       string `yaml:"name"`
		Type       string `yaml:"type"`
		Laboratory string `yaml:"laboratory"`
	} `yaml:"resources"`
	Reservations []struct {
		Laboratory string `yaml:"laboratory"`
		Resource   string `yaml:"resource"`
		Date       string `yaml:"date"`
		Start      string `yaml:"start"`
		End        string `yaml:"end"`
	} `yaml:"reservations"`
}

func parseSeedFile(r io.Reader) (seedFile, error) {
	var seed seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return seedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	return seed, nil
}

// seedSummary counts the entities created by a seed run.
type seedSummary struct {
	Laboratories int `json:"laboratories" yaml:"laboratories"`
	Resources    int `json:"resources" yaml:"resources"`
	Reservations int `json:"reservations" yaml:"reservations"`
}

// applySeed creates every entry it can and reports all failures together.
func applySeed(ctx context.Context, emu *emulator.Emulator, headers map[string]string, seed seedFile) (seedSummary, error) {
	var (
		summary  seedSummary
		failures *multierror.Error
		labIDs   = make(map[string]string)
		resIDs   = make(map[string]string)
	)

	lookup := func(ids map[string]string, kind, name string) (string, error) {
		if name == "" {
			return "", nil
		}
		id, ok := ids[name]
		if !ok {
			return "", fmt.Errorf("%s %q is not defined in the seed file", kind, name)
		}
		return id, nil
	}

	for i, lab := range seed.Laboratories {
		resp, apiErr := emu.Invoke(ctx, "POST", "/laboratories", map[string]any{
			"name":        lab.Name,
			"description": lab.Description,
			"location":    lab.Location,
		}, headers)
		if apiErr != nil {
			failures = multierror.Append(failures, fmt.Errorf("laboratories[%d]: %w", i, apiErr))
			continue
		}
		labIDs[lab.Name] = resp.Body.(api.LaboratoryDTO).ID
		summary.Laboratories++
	}

	for i, res := range seed.Resources {
		labID, err := lookup(labIDs, "laboratory", res.Laboratory)
		if err != nil {
			failures = multierror.Append(failures, fmt.Errorf("resources[%d]: %w", i, err))
			continue
		}
		resp, apiErr := emu.Invoke(ctx, "POST", "/resources", map[string]any{
			"name":         res.Name,
			"type":         res.Type,
			"laboratoryId": labID,
		}, headers)
		if apiErr != nil {
			failures = multierror.Append(failures, fmt.Errorf("resources[%d]: %w", i, apiErr))
			continue
		}
		resIDs[res.Name] = resp.Body.(api.ResourceDTO).ID
		summary.Resources++
	}

	for i, r := range seed.Reservations {
		labID, err := lookup(labIDs, "laboratory", r.Laboratory)
		if err != nil {
			failures = multierror.Append(failures, fmt.Errorf("reservations[%d]: %w", i, err))
			continue
		}
		resID, err := lookup(resIDs, "resource", r.Resource)
		if err != nil {
			failures = multierror.Append(failures, fmt.Errorf("reservations[%d]: %w", i, err))
			continue
		}
		_, apiErr := emu.Invoke(ctx, "POST", "/reservations", map[string]any{
			"laboratoryId":    labID,
			"resourceId":      resID,
			"reservationDate": r.Date,
			"startTime":       r.Start,
			"endTime":         r.End,
		}, headers)
		if apiErr != nil {
			failures = multierror.Append(failures, fmt.Errorf("reservations[%d]: %w", i, apiErr))
			continue
		}
		summary.Reservations++
	}

	return summary, failures.ErrorOrNil()
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "create the laboratories, resources and reservations listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			seed, err := parseSeedFile(f)
			_ = f.Close()
			if err != nil {
				return err
			}

			return withEmulator(cmd, opts, func(ctx context.Context, emu *emulator.Emulator) error {
				headers, err := loginAdmin(ctx, emu, opts.cfg)
				if err != nil {
					return err
				}
				summary, seedErr := applySeed(ctx, emu, headers, seed)
				if err := writeDocument(cmd.OutOrStdout(), "yaml", summary); err != nil {
					return err
				}
				if seedErr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), seedErr)
					return &apiFailure{err: seedErr}
				}
				return nil
			})
		},
	}
}
