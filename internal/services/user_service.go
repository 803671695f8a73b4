package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/repo"
)

// ErrInvalidProfile wraps profile validation failures.
var ErrInvalidProfile = errors.New("invalid profile")

const maxBioRunes = 2000

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Email         *string
	Bio           *string
	SkillsOffered *string
}

// UserService reads and writes user profiles.
type UserService struct {
	DB *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Profile returns the stored profile of user.
func (s *UserService) Profile(ctx context.Context, user string) (*domain.User, error) {
	u, err := repo.FindUserByName(ctx, s.DB, user)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile merges in into the profile of user, creating it when absent.
func (s *UserService) UpdateProfile(ctx context.Context, user string, in ProfileInput) (*domain.User, error) {
	ctx, span := otel.Tracer("services/UserService").Start(ctx, "UpdateProfile",
		trace.WithAttributes(attribute.String("user.id", user)),
	)
	defer span.End()

	cur, err := repo.FindUserByName(ctx, s.DB, user)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		cur = &domain.User{Username: user}
	case err != nil:
		return nil, err
	}

	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		if e != "" {
			if _, err := mail.ParseAddress(e); err != nil {
				return nil, fmt.Errorf("%w: email is not valid", ErrInvalidProfile)
			}
		}
		cur.Email = e
	}
	if in.Bio != nil {
		b := strings.TrimSpace(*in.Bio)
		if len([]rune(b)) > maxBioRunes {
			return nil, fmt.Errorf("%w: bio exceeds %d characters", ErrInvalidProfile, maxBioRunes)
		}
		cur.Bio = b
	}
	if in.SkillsOffered != nil {
		cur.SkillsOffered = collapseSpaces(*in.SkillsOffered)
	}

	out, err := repo.UpsertUser(ctx, s.DB, cur)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return out, nil
}
