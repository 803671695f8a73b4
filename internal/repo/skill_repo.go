package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

// SkillTotals is the per-owner aggregate shown on the dashboard.
type SkillTotals struct {
	Total      int64
	Completed  int64
	InProgress int64
}

// CreateSkill inserts s with a fresh UUID and UTC timestamps. An empty Status
// defaults to in_progress. s is updated in place.
func CreateSkill(ctx context.Context, db *gorm.DB, s *domain.Skill) error {
	now := time.Now().UTC()
	s.ID = uuid.NewString()
	if s.Status == "" {
		s.Status = domain.SkillInProgress
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return db.WithContext(ctx).Create(s).Error
}

// GetSkill fetches a skill by ID or returns ErrNotFound.
func GetSkill(ctx context.Context, db *gorm.DB, id string) (*domain.Skill, error) {
	var s domain.Skill
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListMarket returns skills not owned by exclude, newest first. A
// non-positive limit returns every row.
func ListMarket(ctx context.Context, db *gorm.DB, exclude string, limit int) ([]domain.Skill, error) {
	var out []domain.Skill
	q := db.WithContext(ctx).Where("owner <> ?", exclude).Order("created_at DESC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListSkillsByOwner returns every skill owned by owner, most recently
// updated first.
func ListSkillsByOwner(ctx context.Context, db *gorm.DB, owner string) ([]domain.Skill, error) {
	var out []domain.Skill
	err := db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("updated_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// ListSkillsByIDs returns the skills whose IDs are in ids, in no particular
// order. Unknown IDs are skipped.
func ListSkillsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Skill, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Skill
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// ListAllSkills returns every skill. Used to rebuild the search index.
func ListAllSkills(ctx context.Context, db *gorm.DB) ([]domain.Skill, error) {
	var out []domain.Skill
	err := db.WithContext(ctx).Order("created_at ASC").Find(&out).Error
	return out, err
}

// DeleteSkillCascade removes a skill together with its exchange requests and
// their chat messages in a single transaction. It returns ErrNotFound when
// the skill does not exist; nothing is removed in that case.
func DeleteSkillCascade(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reqIDs := tx.Model(&domain.ExchangeRequest{}).Select("id").Where("skill_id = ?", id)
		if err := tx.Where("request_id IN (?)", reqIDs).Delete(&domain.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("skill_id = ?", id).Delete(&domain.ExchangeRequest{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Skill{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountSkills returns dashboard totals for owner.
func CountSkills(ctx context.Context, db *gorm.DB, owner string) (SkillTotals, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Skill{}).
		Select("status, COUNT(*) AS n").
		Where("owner = ?", owner).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return SkillTotals{}, err
	}
	var t SkillTotals
	for _, r := range rows {
		t.Total += r.N
		switch r.Status {
		case domain.SkillCompleted:
			t.Completed = r.N
		case domain.SkillInProgress:
			t.InProgress = r.N
		}
	}
	return t, nil
}

// LastActiveSkill returns owner's most recently updated skill, or (nil, nil)
// when there is none.
func LastActiveSkill(ctx context.Context, db *gorm.DB, owner string) (*domain.Skill, error) {
	var s domain.Skill
	err := db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("updated_at DESC, created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
