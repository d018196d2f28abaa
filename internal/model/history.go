package model

import "time"

// ClientHistory is the derived per-client aggregate. It is never
// persisted; it is recomputed from the current pickup snapshot.
type ClientHistory struct {
	Client           Client    `json:"client"`
	Pickups          []Pickup  `json:"pickups"`
	TotalLitres      float64   `json:"total_litres"`
	AverageLitres30d float64   `json:"average_litres_30d"` // Only meaningful when at least one pickup matched
	FirstPickupAt    time.Time `json:"first_pickup_at"`
	LastPickupAt     time.Time `json:"last_pickup_at"`
	WeakMatches      int       `json:"weak_matches"` // Records resolved by a contact-field heuristic only
}
