package statestore

import (
	"strings"

	"github.com/example/lablink/internal/codec"
	"github.com/example/lablink/internal/persistence"
)

// persistedShape mirrors persistence.State with pointer fields so that
// collections missing from older payloads can be told apart from empty ones.
type persistedShape struct {
	Users        *[]persistence.User        `json:"users"`
	Tokens       *map[string]string         `json:"tokens"`
	Laboratories *[]persistence.Laboratory  `json:"laboratories"`
	Resources    *[]persistence.Resource    `json:"resources"`
	Reservations *[]persistence.Reservation `json:"reservations"`
}

func decode(c codec.Codec, data []byte, defaults func() persistence.State) (persistence.State, error) {
	var shape persistedShape
	if err := c.Unmarshal(data, &shape); err != nil {
		return persistence.State{}, err
	}

	state := defaults()
	if shape.Users != nil {
		state.Users = *shape.Users
	}
	if shape.Tokens != nil {
		state.Tokens = *shape.Tokens
	}
	if shape.Laboratories != nil {
		state.Laboratories = *shape.Laboratories
	}
	if shape.Resources != nil {
		state.Resources = *shape.Resources
	}
	if shape.Reservations != nil {
		state.Reservations = *shape.Reservations
	}
	return normalize(state), nil
}

// normalize backfills per-entity defaults.
func normalize(state persistence.State) persistence.State {
	if state.Tokens == nil {
		state.Tokens = make(map[string]string)
	}
	for i := range state.Users {
		if strings.TrimSpace(state.Users[i].Name) == "" {
			state.Users[i].Name = state.Users[i].Email
		}
	}
	for i := range state.Reservations {
		if state.Reservations[i].Status == "" {
			state.Reservations[i].Status = persistence.ReservationStatusActive
		}
	}
	return state
}
