package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id UUID PRIMARY KEY,
	email VARCHAR(255) NOT NULL UNIQUE,
	wallet_balance NUMERIC(12, 2) NOT NULL DEFAULT 0,
	wallet_currency VARCHAR(8) NOT NULL DEFAULT 'INR',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bookings (
	booking_id UUID PRIMARY KEY,
	booking_code VARCHAR(32) NOT NULL UNIQUE,
	user_id UUID NOT NULL,
	guide_id VARCHAR(64) NULL,
	package_id VARCHAR(64) NULL,
	destination_id VARCHAR(64) NULL,
	booking_type VARCHAR(16) NOT NULL,
	status VARCHAR(16) NOT NULL,
	payment_status VARCHAR(24) NOT NULL,
	base_fare NUMERIC(12, 2) NOT NULL DEFAULT 0,
	taxes NUMERIC(12, 2) NOT NULL DEFAULT 0,
	fees NUMERIC(12, 2) NOT NULL DEFAULT 0,
	discounts NUMERIC(12, 2) NOT NULL DEFAULT 0,
	total NUMERIC(12, 2) NOT NULL DEFAULT 0,
	currency VARCHAR(8) NOT NULL DEFAULT 'INR',
	wallet_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
	payable_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
	travel_from VARCHAR(255) NOT NULL DEFAULT '',
	travel_to VARCHAR(255) NOT NULL DEFAULT '',
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	passengers INT NOT NULL DEFAULT 1,
	coupon_code VARCHAR(64) NULL,
	coupon_discount NUMERIC(12, 2) NULL,
	wallet_used BOOLEAN NOT NULL DEFAULT FALSE,
	timeline JSONB NOT NULL DEFAULT '[]',
	invoice_number VARCHAR(64) NULL,
	ticket_number VARCHAR(64) NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS payments (
	payment_id UUID PRIMARY KEY,
	booking_id UUID NOT NULL REFERENCES bookings (booking_id),
	user_id UUID NOT NULL,
	method VARCHAR(16) NOT NULL,
	provider VARCHAR(32) NOT NULL,
	provider_order_id VARCHAR(128) NULL,
	provider_payment_id VARCHAR(128) NULL,
	amount NUMERIC(12, 2) NOT NULL,
	currency VARCHAR(8) NOT NULL,
	status VARCHAR(24) NOT NULL,
	attempts INT NOT NULL DEFAULT 1,
	breakdown JSONB NOT NULL DEFAULT '{}',
	refunded_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
	metadata JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS payments_provider_order_idx ON payments (provider_order_id);
CREATE INDEX IF NOT EXISTS payments_user_idx ON payments (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS refunds (
	refund_id UUID PRIMARY KEY,
	booking_id UUID NOT NULL REFERENCES bookings (booking_id),
	payment_id UUID NOT NULL REFERENCES payments (payment_id),
	user_id UUID NOT NULL,
	amount_requested NUMERIC(12, 2) NOT NULL,
	amount_approved NUMERIC(12, 2) NOT NULL DEFAULT 0,
	reason TEXT NOT NULL DEFAULT '',
	status VARCHAR(16) NOT NULL,
	timeline JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS coupons (
	code VARCHAR(64) PRIMARY KEY,
	discount_type VARCHAR(16) NOT NULL,
	discount_value NUMERIC(12, 2) NOT NULL,
	max_discount NUMERIC(12, 2) NULL,
	min_order_amount NUMERIC(12, 2) NULL,
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	usage_limit BIGINT NULL,
	usage_per_user BIGINT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	redemptions BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tax_configs (
	tax_config_id UUID PRIMARY KEY,
	gst_percentage NUMERIC(6, 2) NOT NULL,
	service_charge NUMERIC(12, 2) NOT NULL DEFAULT 0,
	peak_surcharge NUMERIC(12, 2) NOT NULL DEFAULT 0,
	insurance_fee NUMERIC(12, 2) NOT NULL DEFAULT 0,
	effective_from TIMESTAMPTZ NOT NULL,
	effective_to TIMESTAMPTZ NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	transaction_id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users (user_id),
	booking_id UUID NULL,
	actor_id VARCHAR(64) NULL,
	type VARCHAR(8) NOT NULL,
	amount NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
	currency VARCHAR(8) NOT NULL,
	balance_after NUMERIC(12, 2) NOT NULL CHECK (balance_after >= 0),
	reason TEXT NOT NULL DEFAULT '',
	reference VARCHAR(128) NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS wallet_transactions_user_idx ON wallet_transactions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS webhook_events (
	provider VARCHAR(32) NOT NULL,
	event_id VARCHAR(128) NOT NULL,
	event_type VARCHAR(64) NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (provider, event_id)
);
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}
	return nil
}
