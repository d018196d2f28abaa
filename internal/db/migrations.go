package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		neighborhood TEXT NOT NULL DEFAULT '',
		litres_total NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS pickups (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		client_id UUID REFERENCES clients(id),
		route_id UUID,
		requested_at TIMESTAMPTZ NOT NULL,
		scheduled_at TIMESTAMPTZ,
		date TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT 'pending',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		litres NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (litres >= 0),
		address TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		neighborhood TEXT NOT NULL DEFAULT '',
		contact_name TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		historical BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'pickups' AND column_name = 'historical') THEN
			ALTER TABLE pickups ADD COLUMN historical BOOLEAN NOT NULL DEFAULT FALSE;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'pickups' AND column_name = 'route_id') THEN
			ALTER TABLE pickups ADD COLUMN route_id UUID;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'pickups' AND column_name = 'completed') THEN
			ALTER TABLE pickups ADD COLUMN completed BOOLEAN NOT NULL DEFAULT FALSE;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'clients' AND column_name = 'litres_total') THEN
			ALTER TABLE clients ADD COLUMN litres_total NUMERIC(12,2) NOT NULL DEFAULT 0;
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_pickups_client_id ON pickups (client_id) WHERE client_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_pickups_requested_at ON pickups (requested_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_pickups_district ON pickups (district);`,
	`CREATE INDEX IF NOT EXISTS idx_pickups_status ON pickups (status);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
