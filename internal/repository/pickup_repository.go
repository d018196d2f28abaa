package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asram/pickup-service/internal/model"
)

const pickupColumns = `
	id,
	client_id,
	route_id,
	requested_at,
	scheduled_at,
	date,
	completed_at,
	status,
	completed,
	litres,
	address,
	district,
	neighborhood,
	contact_name,
	contact_phone,
	contact_email,
	historical,
	created_at,
	updated_at
`

// PickupRepository owns all pickup writes and an in-memory mirror of
// the full collection. Every mutation is followed by a Reload at the
// service layer, so readers always see the last successfully loaded
// state rather than a partially applied one.
type PickupRepository struct {
	db *gorm.DB

	mu       sync.RWMutex
	snapshot []model.Pickup
	loadErr  error
}

func NewPickupRepository(db *gorm.DB) *PickupRepository {
	return &PickupRepository{db: db}
}

// Reload fetches every pickup ordered by requested date descending and
// replaces the mirror. Records missing the primary date get it
// backfilled from the requested date before entering the mirror. On
// failure the previous snapshot is kept and the error is recorded.
func (r *PickupRepository) Reload(ctx context.Context) error {
	var pickups []model.Pickup
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+pickupColumns+`
		FROM pickups
		ORDER BY requested_at DESC
	`).Scan(&pickups).Error

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.loadErr = err
		return err
	}
	for i := range pickups {
		if pickups[i].Date == nil || pickups[i].Date.IsZero() {
			requested := pickups[i].RequestedAt
			pickups[i].Date = &requested
		}
	}
	r.snapshot = pickups
	r.loadErr = nil
	return nil
}

// Snapshot returns the current mirror and the last load error, if any.
func (r *PickupRepository) Snapshot() ([]model.Pickup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Pickup, len(r.snapshot))
	copy(out, r.snapshot)
	return out, r.loadErr
}

func (r *PickupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Pickup, error) {
	var pickup model.Pickup
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+pickupColumns+`
		FROM pickups
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&pickup).Error
	if err != nil {
		return nil, err
	}
	if pickup.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &pickup, nil
}

// Insert writes a new pickup with server-assigned timestamps. Defaults
// are filled the way the scheduling flow expects: pending status,
// litres zero, date falling back to the requested date or now.
func (r *PickupRepository) Insert(ctx context.Context, pickup model.Pickup) (*model.Pickup, error) {
	if pickup.RequestedAt.IsZero() {
		pickup.RequestedAt = time.Now().UTC()
	}
	if pickup.Date == nil || pickup.Date.IsZero() {
		date := pickup.RequestedAt
		pickup.Date = &date
	}
	if pickup.Status == "" {
		pickup.Status = model.PickupStatusPending
	}
	// Canonical status is the string field; the legacy boolean is kept
	// in sync for old readers.
	pickup.Completed = pickup.Status == model.PickupStatusCompleted

	var saved model.Pickup
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO pickups (
			client_id,
			route_id,
			requested_at,
			scheduled_at,
			date,
			completed_at,
			status,
			completed,
			litres,
			address,
			district,
			neighborhood,
			contact_name,
			contact_phone,
			contact_email,
			historical
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+pickupColumns,
		pickup.ClientID,
		pickup.RouteID,
		pickup.RequestedAt,
		pickup.ScheduledAt,
		pickup.Date,
		pickup.CompletedAt,
		pickup.Status,
		pickup.Completed,
		pickup.Litres,
		pickup.Address,
		pickup.District,
		pickup.Neighborhood,
		pickup.ContactName,
		pickup.ContactPhone,
		pickup.ContactEmail,
		pickup.Historical,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Update merges the non-nil patch fields and bumps updated_at.
func (r *PickupRepository) Update(ctx context.Context, id uuid.UUID, patch model.PickupPatch) error {
	sets := []string{"updated_at = NOW()"}
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = ?", column))
		args = append(args, value)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.ScheduledAt != nil {
		add("scheduled_at", *patch.ScheduledAt)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.District != nil {
		add("district", *patch.District)
	}
	if patch.Neighborhood != nil {
		add("neighborhood", *patch.Neighborhood)
	}
	if patch.ContactName != nil {
		add("contact_name", *patch.ContactName)
	}
	if patch.ContactPhone != nil {
		add("contact_phone", *patch.ContactPhone)
	}
	if patch.ContactEmail != nil {
		add("contact_email", *patch.ContactEmail)
	}
	if patch.Litres != nil {
		add("litres", *patch.Litres)
	}

	args = append(args, id)
	result := r.db.WithContext(ctx).Exec(
		"UPDATE pickups SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Complete marks the pickup done: litres, completion timestamp, and
// both status representations.
func (r *PickupRepository) Complete(ctx context.Context, id uuid.UUID, litres float64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE pickups
		SET
			status = ?,
			completed = TRUE,
			litres = ?,
			completed_at = NOW(),
			updated_at = NOW()
		WHERE id = ?
	`, model.PickupStatusCompleted, litres, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PickupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM pickups WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Derived views are pure filters over the mirror, no I/O.

func (r *PickupRepository) ByDistrict(district string) []model.Pickup {
	snapshot, _ := r.Snapshot()
	return FilterByDistrict(snapshot, district)
}

func (r *PickupRepository) ByNeighborhood(neighborhood string) []model.Pickup {
	snapshot, _ := r.Snapshot()
	return FilterByNeighborhood(snapshot, neighborhood)
}

func (r *PickupRepository) ByClient(clientID uuid.UUID) []model.Pickup {
	snapshot, _ := r.Snapshot()
	return FilterByClient(snapshot, clientID)
}

func FilterByDistrict(pickups []model.Pickup, district string) []model.Pickup {
	out := make([]model.Pickup, 0)
	for _, p := range pickups {
		if strings.EqualFold(p.District, district) {
			out = append(out, p)
		}
	}
	return out
}

func FilterByNeighborhood(pickups []model.Pickup, neighborhood string) []model.Pickup {
	out := make([]model.Pickup, 0)
	for _, p := range pickups {
		if strings.EqualFold(p.Neighborhood, neighborhood) {
			out = append(out, p)
		}
	}
	return out
}

func FilterByClient(pickups []model.Pickup, clientID uuid.UUID) []model.Pickup {
	out := make([]model.Pickup, 0)
	for _, p := range pickups {
		if p.ClientID != nil && *p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}
