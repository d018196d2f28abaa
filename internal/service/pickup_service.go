package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/asram/pickup-service/internal/config"
	"github.com/asram/pickup-service/internal/model"
	"github.com/asram/pickup-service/internal/repository"
)

type PickupService struct {
	pickups PickupStore
	clients ClientStore
	cache   HistoryCache // May be nil
	cfg     *config.Config
	log     zerolog.Logger
}

func NewPickupService(pickups PickupStore, clients ClientStore, cache HistoryCache, cfg *config.Config, log zerolog.Logger) *PickupService {
	return &PickupService{
		pickups: pickups,
		clients: clients,
		cache:   cache,
		cfg:     cfg,
		log:     log,
	}
}

type CreatePickupInput struct {
	ClientID     *uuid.UUID
	RouteID      *uuid.UUID
	RequestedAt  time.Time
	ScheduledAt  *time.Time
	Date         *time.Time
	Litres       float64
	Address      string
	District     string
	Neighborhood string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Historical   bool
	Status       model.PickupStatus
}

type ListPickupsFilter struct {
	District     string
	Neighborhood string
	ClientID     *uuid.UUID
}

// List serves from the in-memory mirror; the filters are the derived
// views and do no I/O.
func (s *PickupService) List(ctx context.Context, filter ListPickupsFilter) ([]model.Pickup, error) {
	snapshot, loadErr := s.pickups.Snapshot()
	if loadErr != nil && len(snapshot) == 0 {
		return nil, fmt.Errorf("pickups unavailable: %w", loadErr)
	}
	if filter.District != "" {
		snapshot = repository.FilterByDistrict(snapshot, filter.District)
	}
	if filter.Neighborhood != "" {
		snapshot = repository.FilterByNeighborhood(snapshot, filter.Neighborhood)
	}
	if filter.ClientID != nil {
		snapshot = repository.FilterByClient(snapshot, *filter.ClientID)
	}
	return snapshot, nil
}

// Create inserts the pickup and, when it references a client and
// carries litres, bumps that client's cumulative counter. The two
// writes are independent: the increment runs only after the insert
// succeeded, and an increment failure does not roll the insert back.
func (s *PickupService) Create(ctx context.Context, principal model.Principal, input CreatePickupInput) (*model.Pickup, error) {
	if input.Litres < 0 {
		return nil, fmt.Errorf("%w: litres must not be negative", ErrInvalidInput)
	}
	if input.ClientID == nil && input.RouteID == nil && input.Address == "" {
		return nil, fmt.Errorf("%w: a client, route or address is required", ErrInvalidInput)
	}

	pickup := model.Pickup{
		ClientID:     input.ClientID,
		RouteID:      input.RouteID,
		RequestedAt:  input.RequestedAt,
		ScheduledAt:  input.ScheduledAt,
		Date:         input.Date,
		Status:       input.Status,
		Litres:       input.Litres,
		Address:      input.Address,
		District:     input.District,
		Neighborhood: input.Neighborhood,
		ContactName:  input.ContactName,
		ContactPhone: input.ContactPhone,
		ContactEmail: input.ContactEmail,
		Historical:   input.Historical,
	}
	if pickup.Status == model.PickupStatusCompleted {
		if pickup.CompletedAt == nil {
			completedAt := pickup.EffectiveDate()
			if completedAt.IsZero() {
				completedAt = time.Now().UTC()
			}
			pickup.CompletedAt = &completedAt
		}
	}

	saved, err := s.pickups.Insert(ctx, pickup)
	if err != nil {
		return nil, err
	}

	if saved.ClientID != nil && saved.Litres > 0 {
		if err := s.clients.AddLitres(ctx, *saved.ClientID, saved.Litres); err != nil {
			// The pickup is already persisted; the counter drifts until
			// recomputed. Accepted gap, logged for reconciliation.
			s.log.Warn().Err(err).
				Str("pickup_id", saved.ID.String()).
				Str("client_id", saved.ClientID.String()).
				Msg("client litres counter increment failed")
		}
	}

	s.invalidateHistory(ctx, saved.ClientID)
	s.reload(ctx)
	return saved, nil
}

func (s *PickupService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, patch model.PickupPatch) error {
	if principal.IsClient() {
		return ErrPermissionDenied
	}
	existing, err := s.pickups.GetByID(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if patch.Litres != nil && *patch.Litres < 0 {
		return fmt.Errorf("%w: litres must not be negative", ErrInvalidInput)
	}
	if err := s.pickups.Update(ctx, id, patch); err != nil {
		return mapStoreError(err)
	}
	s.invalidateHistory(ctx, existing.ClientID)
	s.reload(ctx)
	return nil
}

func (s *PickupService) Complete(ctx context.Context, principal model.Principal, id uuid.UUID, litres float64) error {
	if principal.IsClient() {
		return ErrPermissionDenied
	}
	if litres < 0 {
		return fmt.Errorf("%w: litres must not be negative", ErrInvalidInput)
	}
	existing, err := s.pickups.GetByID(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if err := s.pickups.Complete(ctx, id, litres); err != nil {
		return mapStoreError(err)
	}
	s.invalidateHistory(ctx, existing.ClientID)
	s.reload(ctx)
	return nil
}

func (s *PickupService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	existing, err := s.pickups.GetByID(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if err := s.pickups.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.invalidateHistory(ctx, existing.ClientID)
	s.reload(ctx)
	return nil
}

// AddHistoricalEntry backfills an already-completed pickup for the
// client: litres bounded to the configured range, completion date set
// to the submitted date, contact and address copied from the client.
func (s *PickupService) AddHistoricalEntry(ctx context.Context, principal model.Principal, clientID uuid.UUID, date time.Time, litres float64) (*model.Pickup, error) {
	if principal.IsClient() {
		return nil, ErrPermissionDenied
	}
	minLitres := s.cfg.Pickups.HistoricalMinLitres
	maxLitres := s.cfg.Pickups.HistoricalMaxLitres
	if litres < minLitres || litres > maxLitres {
		return nil, fmt.Errorf("%w: litres must be between %g and %g", ErrInvalidInput, minLitres, maxLitres)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	entryDate := date
	return s.Create(ctx, principal, CreatePickupInput{
		ClientID:     &client.ID,
		RequestedAt:  entryDate,
		Date:         &entryDate,
		Litres:       litres,
		Address:      client.Address,
		District:     client.District,
		Neighborhood: client.Neighborhood,
		ContactName:  client.Name,
		ContactPhone: client.Phone,
		ContactEmail: client.Email,
		Historical:   true,
		Status:       model.PickupStatusCompleted,
	})
}

func (s *PickupService) invalidateHistory(ctx context.Context, clientID *uuid.UUID) {
	if s.cache == nil || clientID == nil {
		return
	}
	if err := s.cache.Delete(ctx, historyCacheKey(*clientID)); err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("history cache invalidation failed")
	}
}

func (s *PickupService) reload(ctx context.Context) {
	if err := s.pickups.Reload(ctx); err != nil {
		s.log.Error().Err(err).Msg("pickup reload after mutation failed")
	}
}

func mapStoreError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
