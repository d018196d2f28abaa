package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asram/pickup-service/internal/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, email, phone, address, district, neighborhood, litres_total, created_at
		FROM clients
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, email, phone, address, district, neighborhood, litres_total, created_at
		FROM clients
		ORDER BY name ASC
	`).Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// AddLitres bumps the client's cumulative counter in a single atomic
// statement.
func (r *ClientRepository) AddLitres(ctx context.Context, id uuid.UUID, litres float64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE clients
		SET litres_total = litres_total + ?
		WHERE id = ?
	`, litres, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
