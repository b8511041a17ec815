package main

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/lablink/internal/api"
	"github.com/example/lablink/internal/emulator"
	"github.com/example/lablink/internal/persistence"
)

// stateDocument is the dump layout. Credentials and token values are left out.
type stateDocument struct {
	Users        []userDocument       `json:"users" yaml:"users"`
	Sessions     int                  `json:"sessions" yaml:"sessions"`
	Laboratories []api.LaboratoryDTO  `json:"laboratories" yaml:"laboratories"`
	Resources    []api.ResourceDTO    `json:"resources" yaml:"resources"`
	Reservations []api.ReservationDTO `json:"reservations" yaml:"reservations"`
}

type userDocument struct {
	ID       string `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	Name     string `json:"name" yaml:"name"`
	Sessions int    `json:"sessions" yaml:"sessions"`
}

func newStateDocument(state persistence.State) stateDocument {
	perUser := make(map[string]int, len(state.Users))
	for _, userID := range state.Tokens {
		perUser[userID]++
	}

	doc := stateDocument{
		Users:        make([]userDocument, 0, len(state.Users)),
		Sessions:     len(state.Tokens),
		Laboratories: make([]api.LaboratoryDTO, 0, len(state.Laboratories)),
		Resources:    make([]api.ResourceDTO, 0, len(state.Resources)),
		Reservations: make([]api.ReservationDTO, 0, len(state.Reservations)),
	}
	for _, u := range state.Users {
		doc.Users = append(doc.Users, userDocument{ID: u.ID, Email: u.Email, Name: u.Name, Sessions: perUser[u.ID]})
	}
	for _, l := range state.Laboratories {
		doc.Laboratories = append(doc.Laboratories, api.LaboratoryDTO{ID: l.ID, Name: l.Name, Description: l.Description, Location: l.Location})
	}
	for _, r := range state.Resources {
		doc.Resources = append(doc.Resources, api.ResourceDTO{ID: r.ID, Name: r.Name, Type: r.Type, LaboratoryID: r.LaboratoryID})
	}
	for _, r := range state.Reservations {
		doc.Reservations = append(doc.Reservations, api.ReservationDTO{
			ID:           r.ID,
			UserID:       r.UserID,
			LaboratoryID: r.LaboratoryID,
			ResourceID:   r.ResourceID,
			Date:         r.Date,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			Status:       r.Status,
		})
	}
	sort.SliceStable(doc.Users, func(i, j int) bool { return doc.Users[i].Email < doc.Users[j].Email })
	return doc
}

func newDumpCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "print the stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEmulator(cmd, opts, func(ctx context.Context, emu *emulator.Emulator) error {
				return writeDocument(cmd.OutOrStdout(), format, newStateDocument(emu.Snapshot()))
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output format: yaml or json")
	return cmd
}

func newConflictsCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "list stored reservations that overlap each other",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEmulator(cmd, opts, func(ctx context.Context, emu *emulator.Emulator) error {
				headers, err := loginAdmin(ctx, emu, opts.cfg)
				if err != nil {
					return err
				}
				resp, apiErr := emu.Invoke(ctx, "GET", "/reservations/conflicts", nil, headers)
				if apiErr != nil {
					return reportAPIError(cmd.OutOrStdout(), apiErr)
				}
				return writeDocument(cmd.OutOrStdout(), format, resp.Body)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output format: yaml or json")
	return cmd
}
