package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"travelbook/entity"
)

type TaxConfigsPostgresRepository struct {
	db *sqlx.DB
}

func NewTaxConfigsPostgresRepository(db *sqlx.DB) *TaxConfigsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}
	return &TaxConfigsPostgresRepository{db: db}
}

func (r *TaxConfigsPostgresRepository) Store(ctx context.Context, cfg entity.TaxConfig) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tax_configs (
			tax_config_id, gst_percentage, service_charge, peak_surcharge,
			insurance_fee, effective_from, effective_to, is_active
		) VALUES (
			:tax_config_id, :gst_percentage, :service_charge, :peak_surcharge,
			:insurance_fee, :effective_from, :effective_to, :is_active
		)
	`, cfg)
	if err != nil {
		return fmt.Errorf("could not store tax config: %w", err)
	}
	return nil
}

// GetActive returns the schedule in effect right now: active, already
// effective, not yet expired, most recent effective_from wins. A nil result
// with no error means no config is in effect and fare defaults apply.
func (r *TaxConfigsPostgresRepository) GetActive(ctx context.Context) (*entity.TaxConfig, error) {
	var cfg entity.TaxConfig
	err := r.db.GetContext(ctx, &cfg, `
		SELECT * FROM tax_configs
		WHERE is_active
		  AND effective_from <= NOW()
		  AND (effective_to IS NULL OR effective_to >= NOW())
		ORDER BY effective_from DESC
		LIMIT 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get active tax config: %w", err)
	}
	return &cfg, nil
}
