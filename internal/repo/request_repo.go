// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for exchange
// requests.
//
// Requests are immutable apart from their status, which moves exactly once
// from pending to a terminal label. UpdateRequestStatus enforces that
// transition in the WHERE clause so two concurrent responders cannot both
// succeed.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

// ErrNotPending is returned by UpdateRequestStatus when the request exists
// but was already answered.
var ErrNotPending = errors.New("request is not pending")

// CreateRequest inserts a pending request with a fresh UUID and UTC
// timestamps. r is updated in place.
func CreateRequest(ctx context.Context, db *gorm.DB, r *domain.ExchangeRequest) error {
	now := time.Now().UTC()
	r.ID = uuid.NewString()
	r.Status = domain.StatusPending
	r.CreatedAt, r.UpdatedAt = now, now
	return db.WithContext(ctx).Create(r).Error
}

// GetRequest fetches a request by ID or returns ErrNotFound.
func GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.ExchangeRequest, error) {
	var r domain.ExchangeRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListSentRequests returns requests created by user, newest first.
func ListSentRequests(ctx context.Context, db *gorm.DB, user string) ([]domain.ExchangeRequest, error) {
	var out []domain.ExchangeRequest
	err := db.WithContext(ctx).
		Where("from_user = ?", user).
		Order("created_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// ListReceivedRequests returns requests addressed to user, newest first.
func ListReceivedRequests(ctx context.Context, db *gorm.DB, user string) ([]domain.ExchangeRequest, error) {
	var out []domain.ExchangeRequest
	err := db.WithContext(ctx).
		Where("to_user = ?", user).
		Order("created_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// ListAcceptedRequests returns accepted requests in which user participates
// on either side, most recently updated first.
func ListAcceptedRequests(ctx context.Context, db *gorm.DB, user string) ([]domain.ExchangeRequest, error) {
	var out []domain.ExchangeRequest
	err := db.WithContext(ctx).
		Where("status = ? AND (from_user = ? OR to_user = ?)", domain.StatusAccepted, user, user).
		Order("updated_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// UpdateRequestStatus moves a pending request to status. It returns
// ErrNotFound when the request does not exist and ErrNotPending when it has
// already been answered.
func UpdateRequestStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.ExchangeRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := GetRequest(ctx, db, id); err != nil {
		return err
	}
	return ErrNotPending
}
