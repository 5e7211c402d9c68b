package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/comanda-ar/comanda-gateway/pkg/db/models"
)

// GormStorage is the embedded alternative to Redis: the same key layout,
// persisted as rows so a single-binary deploy needs no external store.
type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func (s *GormStorage) ReadCart(ctx context.Context, sessionID string) (string, error) {
	return s.read(ctx, cartKey(sessionID))
}

func (s *GormStorage) WriteCart(ctx context.Context, sessionID, payload string) error {
	return s.write(ctx, cartKey(sessionID), payload)
}

func (s *GormStorage) DeleteCart(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).
		Where("key = ?", cartKey(sessionID)).
		Delete(&models.KVState{}).Error
}

func (s *GormStorage) WritePendingOrder(ctx context.Context, sessionID, orderID string) error {
	return s.write(ctx, pendingOrderKey(sessionID), orderID)
}

// ConsumePendingOrder deletes inside a transaction so two concurrent result
// submissions cannot both observe the same pending id.
func (s *GormStorage) ConsumePendingOrder(ctx context.Context, sessionID string) (string, error) {
	var value string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.KVState
		if err := tx.Where("key = ?", pendingOrderKey(sessionID)).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		value = row.Payload
		return tx.Where("key = ?", row.Key).Delete(&models.KVState{}).Error
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *GormStorage) read(ctx context.Context, key string) (string, error) {
	var row models.KVState
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return row.Payload, nil
}

func (s *GormStorage) write(ctx context.Context, key, payload string) error {
	row := models.KVState{Key: key, Payload: payload, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("comanda:cart:%s", sessionID)
}

func pendingOrderKey(sessionID string) string {
	return fmt.Sprintf("comanda:pending_order:%s", sessionID)
}
