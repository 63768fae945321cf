package postgres

import "time"

// DailyPriceRecord is one archived day of per-gram USD prices. One row per
// calendar day; a later refresh on the same day overwrites the row.
type DailyPriceRecord struct {
	ID uint `gorm:"primaryKey"`

	Date string `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_price_date"` // YYYY-MM-DD

	GoldPricePerGram   float64 `gorm:"type:numeric;not null"`
	SilverPricePerGram float64 `gorm:"type:numeric;not null"`

	Source string `gorm:"type:varchar(32);not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (DailyPriceRecord) TableName() string {
	return "daily_price_record"
}
