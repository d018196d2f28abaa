package model

import "time"

// PickupPatch carries the editable subset of a pickup. Nil fields are
// left untouched by an update.
type PickupPatch struct {
	Date         *time.Time
	ScheduledAt  *time.Time
	Address      *string
	District     *string
	Neighborhood *string
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	Litres       *float64
}
