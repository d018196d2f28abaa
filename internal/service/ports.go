package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/asram/pickup-service/internal/model"
)

// PickupStore is implemented by repository.PickupRepository.
type PickupStore interface {
	Reload(ctx context.Context) error
	Snapshot() ([]model.Pickup, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Pickup, error)
	Insert(ctx context.Context, pickup model.Pickup) (*model.Pickup, error)
	Update(ctx context.Context, id uuid.UUID, patch model.PickupPatch) error
	Complete(ctx context.Context, id uuid.UUID, litres float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientStore is implemented by repository.ClientRepository.
type ClientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	AddLitres(ctx context.Context, id uuid.UUID, litres float64) error
}

// HistoryCache is the subset of the cache port the services touch.
type HistoryCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func historyCacheKey(clientID uuid.UUID) string {
	return "history:" + clientID.String()
}
