package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PickupStatus string

const (
	PickupStatusPending   PickupStatus = "pending"
	PickupStatusCompleted PickupStatus = "completed"
)

// Legacy rows carry the Spanish status value.
const legacyStatusCompleted = "completada"

type PickupOrigin string

const (
	PickupOriginRoute      PickupOrigin = "route"
	PickupOriginManual     PickupOrigin = "manual"
	PickupOriginIndividual PickupOrigin = "individual"
)

type Pickup struct {
	ID           uuid.UUID    `json:"id"`
	ClientID     *uuid.UUID   `json:"client_id,omitempty"` // Absent for zone/route pickups
	RouteID      *uuid.UUID   `json:"route_id,omitempty"`
	RequestedAt  time.Time    `json:"requested_at"`
	ScheduledAt  *time.Time   `json:"scheduled_at,omitempty"`
	Date         *time.Time   `json:"date,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	Status       PickupStatus `json:"status"`
	Completed    bool         `json:"completed"` // Legacy duplicate of Status, equivalent on read
	Litres       float64      `json:"litres"`
	Address      string       `json:"address"`
	District     string       `json:"district"`
	Neighborhood string       `json:"neighborhood"`
	ContactName  string       `json:"contact_name"`
	ContactPhone string       `json:"contact_phone"`
	ContactEmail string       `json:"contact_email"`
	Historical   bool         `json:"historical"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsCompleted accepts both representations of the completed state:
// the legacy boolean flag and the status string (including the legacy
// Spanish value still present on old rows).
func (p Pickup) IsCompleted() bool {
	if p.Completed {
		return true
	}
	status := strings.ToLower(strings.TrimSpace(string(p.Status)))
	return status == string(PickupStatusCompleted) || status == legacyStatusCompleted
}

// EffectiveDate is the date used for sorting and display: the primary
// date, falling back to the requested date, then the completion date.
func (p Pickup) EffectiveDate() time.Time {
	if p.Date != nil && !p.Date.IsZero() {
		return *p.Date
	}
	if !p.RequestedAt.IsZero() {
		return p.RequestedAt
	}
	if p.CompletedAt != nil {
		return *p.CompletedAt
	}
	return time.Time{}
}

func (p Pickup) Origin() PickupOrigin {
	switch {
	case p.RouteID != nil:
		return PickupOriginRoute
	case p.Historical:
		return PickupOriginManual
	default:
		return PickupOriginIndividual
	}
}

type MatchStrength int

const (
	MatchNone MatchStrength = iota
	MatchByID
	MatchByName
	MatchByEmail
	MatchByPhone
)

// IsWeak reports whether the record was resolved without the strong
// foreign key, i.e. by one of the contact-field heuristics only.
func (m MatchStrength) IsWeak() bool {
	return m != MatchNone && m != MatchByID
}

// MatchClient resolves whether the pickup belongs to the client. The
// heuristics are independent and the first one that holds wins: client
// reference, contact name, e-mail (only when the client has one), phone
// (only when the client has one). Legacy records lack the client
// reference, which is why the contact-field fallbacks exist at all.
func (p Pickup) MatchClient(c Client) MatchStrength {
	if p.ClientID != nil && *p.ClientID == c.ID {
		return MatchByID
	}
	if p.ContactName == c.Name {
		return MatchByName
	}
	if c.Email != "" && p.ContactEmail == c.Email {
		return MatchByEmail
	}
	if c.Phone != "" && p.ContactPhone == c.Phone {
		return MatchByPhone
	}
	return MatchNone
}
