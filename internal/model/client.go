package model

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	District     string    `json:"district"`
	Neighborhood string    `json:"neighborhood"`
	LitresTotal  float64   `json:"litres_total"` // Cumulative counter, incremented on pickup creation
	CreatedAt    time.Time `json:"created_at"`
}
