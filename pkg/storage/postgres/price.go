package postgres

import (
	"context"
	"time"

	"nisabd/internal/metals"

	"gorm.io/gorm/clause"
)

// SaveDailyPrice upserts the archive row for the given day. Refreshes later
// the same day overwrite the earlier prices; last writer wins, matching the
// cache semantics.
func (c *Client) SaveDailyPrice(ctx context.Context, date time.Time, gold, silver float64, source string) error {
	record := &DailyPriceRecord{
		Date:               date.UTC().Format("2006-01-02"),
		GoldPricePerGram:   gold,
		SilverPricePerGram: silver,
		Source:             source,
	}

	return c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gold_price_per_gram", "silver_price_per_gram", "source", "updated_at",
		}),
	}).Create(record).Error
}

// PricesBetween returns archived points in [start, end], ascending by date.
func (c *Client) PricesBetween(ctx context.Context, start, end time.Time) ([]metals.HistoricalPoint, error) {
	var records []DailyPriceRecord
	err := c.DB.WithContext(ctx).
		Where("date >= ? AND date <= ?", start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02")).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	points := make([]metals.HistoricalPoint, 0, len(records))
	for _, r := range records {
		points = append(points, metals.HistoricalPoint{
			Date:        r.Date,
			GoldPrice:   r.GoldPricePerGram,
			SilverPrice: r.SilverPricePerGram,
		})
	}

	return points, nil
}

// DeleteOldPrices trims archive rows older than the given day.
func (c *Client) DeleteOldPrices(ctx context.Context, before time.Time) error {
	return c.DB.WithContext(ctx).
		Where("date < ?", before.UTC().Format("2006-01-02")).
		Delete(&DailyPriceRecord{}).Error
}
