// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for chat messages.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

// CreateMessage inserts m with a fresh UUID. The caller assigns Timestamp.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.ChatMessage) error {
	m.ID = uuid.NewString()
	return db.WithContext(ctx).Create(m).Error
}

// ListMessages returns the history of a request ordered by timestamp, ties
// broken by insertion order.
func ListMessages(ctx context.Context, db *gorm.DB, requestID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("timestamp ASC, rowid ASC").
		Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(ctx context.Context, db *gorm.DB, requestID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM messages WHERE request_id = ?", requestID).Scan(&total).Error
	return total, err
}
