package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

// FindUserByName returns the profile for username or ErrNotFound.
func FindUserByName(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser creates the profile for u.Username or updates its mutable
// fields (email, bio, skills_offered). The stored row is returned.
func UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	row := &domain.User{
		ID:            uuid.NewString(),
		Username:      u.Username,
		Email:         u.Email,
		Bio:           u.Bio,
		SkillsOffered: u.SkillsOffered,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "bio", "skills_offered", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return FindUserByName(ctx, db, u.Username)
}
