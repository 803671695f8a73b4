// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETags) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

// MessagesStats returns the number of messages in a request's history and
// the latest message timestamp. When there are no messages the count is 0
// and latest is nil.
func MessagesStats(ctx context.Context, db *gorm.DB, requestID string) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("request_id = ?", requestID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Avoid MAX() which comes back as TEXT in SQLite.
	var row struct {
		Timestamp time.Time
	}
	if err = q.Select("timestamp").Order("timestamp DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.Timestamp, nil
}

// RequestsStats returns the number of requests a user is party to and the
// latest UpdatedAt among them, for the sent/received list ETags.
func RequestsStats(ctx context.Context, db *gorm.DB, user string) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ExchangeRequest{}).Where("from_user = ? OR to_user = ?", user, user)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
