package persistence

// ReservationStatusActive is assigned to every newly created reservation.
const ReservationStatusActive = "active"

// User represents an account able to authenticate against the emulator.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	// Password holds a plaintext secret written by older snapshots. It is
	// cleared once the user logs in and receives a PasswordHash.
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Laboratory represents a lab that can be booked as a whole.
type Laboratory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Resource represents a bookable piece of equipment, optionally housed in a laboratory.
type Resource struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	LaboratoryID string `json:"laboratoryId,omitempty"`
}

// Reservation books a laboratory and/or resource for a time window on one day.
// Date is YYYY-MM-DD; StartTime and EndTime are HH:MM:SS.
type Reservation struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	LaboratoryID string `json:"laboratoryId,omitempty"`
	ResourceID   string `json:"resourceId,omitempty"`
	Date         string `json:"reservationDate"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Status       string `json:"status,omitempty"`
}

// State is the full entity graph mirrored into a slot.
type State struct {
	Users        []User            `json:"users"`
	Tokens       map[string]string `json:"tokens"`
	Laboratories []Laboratory      `json:"laboratories"`
	Resources    []Resource        `json:"resources"`
	Reservations []Reservation     `json:"reservations"`
}

// Clone returns a deep copy of the state so callers can mutate it freely.
// Collections in the copy are never nil.
func (s State) Clone() State {
	out := State{
		Users:        append(make([]User, 0, len(s.Users)), s.Users...),
		Tokens:       make(map[string]string, len(s.Tokens)),
		Laboratories: append(make([]Laboratory, 0, len(s.Laboratories)), s.Laboratories...),
		Resources:    append(make([]Resource, 0, len(s.Resources)), s.Resources...),
		Reservations: append(make([]Reservation, 0, len(s.Reservations)), s.Reservations...),
	}
	for token, userID := range s.Tokens {
		out.Tokens[token] = userID
	}
	return out
}
