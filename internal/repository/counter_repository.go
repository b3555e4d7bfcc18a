package repository

import (
	"context"
	"time"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterColumn addresses one integer column on one row. Table and Column
// must come from a fixed whitelist; they are interpolated into SQL.
type CounterColumn struct {
	Table     string
	KeyColumn string
	ID        string
	Column    string
	// Upsert creates the row on first adjustment instead of failing
	Upsert bool
}

// CounterRepository performs atomic counter arithmetic in the store
type CounterRepository interface {
	Increment(ctx context.Context, c CounterColumn, delta int64) error
	Set(ctx context.Context, c CounterColumn, value int64) error
	Get(ctx context.Context, c CounterColumn) (int64, error)
	// OwnerIDs lists every row key of a counter table, for recounts
	OwnerIDs(ctx context.Context, table, keyColumn string) ([]string, error)
}

type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Increment runs a single "col = col + delta" statement, so concurrent
// adjustments never lose updates.
func (r *counterRepository) Increment(ctx context.Context, c CounterColumn, delta int64) error {
	db := r.db.WithContext(ctx)

	if c.Upsert {
		err := db.Table(c.Table).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: c.KeyColumn}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				c.Column:     gorm.Expr(c.Table+"."+c.Column+" + ?", delta),
				"updated_at": time.Now().UTC(),
			}),
		}).Create(map[string]interface{}{
			c.KeyColumn:  c.ID,
			c.Column:     delta,
			"updated_at": time.Now().UTC(),
		}).Error
		return storeErr("increment counter", c.Table, err)
	}

	res := db.Table(c.Table).
		Where(c.KeyColumn+" = ?", c.ID).
		UpdateColumn(c.Column, gorm.Expr(c.Column+" + ?", delta))
	if res.Error != nil {
		return storeErr("increment counter", c.Table, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(c.Table)
	}
	return nil
}

func (r *counterRepository) Set(ctx context.Context, c CounterColumn, value int64) error {
	db := r.db.WithContext(ctx)

	if c.Upsert {
		err := db.Table(c.Table).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: c.KeyColumn}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				c.Column:     value,
				"updated_at": time.Now().UTC(),
			}),
		}).Create(map[string]interface{}{
			c.KeyColumn:  c.ID,
			c.Column:     value,
			"updated_at": time.Now().UTC(),
		}).Error
		return storeErr("set counter", c.Table, err)
	}

	res := db.Table(c.Table).Where(c.KeyColumn+" = ?", c.ID).UpdateColumn(c.Column, value)
	if res.Error != nil {
		return storeErr("set counter", c.Table, res.Error)
	}
	if res.RowsAffected == 0 {
		// the row may exist with the value already in place
		var count int64
		if err := db.Table(c.Table).Where(c.KeyColumn+" = ?", c.ID).Count(&count).Error; err != nil {
			return storeErr("set counter", c.Table, err)
		}
		if count == 0 {
			return apperrors.NotFound(c.Table)
		}
	}
	return nil
}

// Get returns the current value. Missing upsert rows read as zero.
func (r *counterRepository) Get(ctx context.Context, c CounterColumn) (int64, error) {
	var values []int64
	err := r.db.WithContext(ctx).Table(c.Table).
		Where(c.KeyColumn+" = ?", c.ID).
		Limit(1).
		Pluck(c.Column, &values).Error
	if err != nil {
		return 0, storeErr("get counter", c.Table, err)
	}
	if len(values) == 0 {
		if c.Upsert {
			return 0, nil
		}
		return 0, apperrors.NotFound(c.Table)
	}
	return values[0], nil
}

func (r *counterRepository) OwnerIDs(ctx context.Context, table, keyColumn string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Table(table).Order(keyColumn).Pluck(keyColumn, &ids).Error
	return ids, storeErr("list counter owners", table, err)
}
