package entity

import (
	"database/sql"
	"time"
)

// TaxConfig is the GST/fee schedule applied to fare calculation. Exactly one
// config is expected to be active at a time; selection filters on the
// [EffectiveFrom, EffectiveTo] window and picks the most recent EffectiveFrom.
type TaxConfig struct {
	ID            string       `db:"tax_config_id"`
	GSTPercentage float64      `db:"gst_percentage"`
	ServiceCharge float64      `db:"service_charge"`
	PeakSurcharge float64      `db:"peak_surcharge"`
	InsuranceFee  float64      `db:"insurance_fee"`
	EffectiveFrom time.Time    `db:"effective_from"`
	EffectiveTo   sql.NullTime `db:"effective_to"`
	IsActive      bool         `db:"is_active"`
}
