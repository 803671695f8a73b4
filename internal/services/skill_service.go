// Package services – SkillService
//
// SkillService owns skill listings: creation (followed by a new_skill
// broadcast), the marketplace and personal views, owner-only deletion with
// an explicit cascade, keyword search over the in-memory index and the
// dashboard summary.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/repo"
	"github.com/tbourn/skillswap-backend/internal/search"
)

// Field limits in runes.
const (
	maxTitleRunes        = 80
	maxDescriptionRunes  = 400
	maxCategoryRunes     = 64
	maxAvailabilityRunes = 64

	defaultMarketLimit = 30
)

// Dashboard suggestions.
const (
	suggestionActive  = "Try a new skill in 'Communication' to complement your current learning!"
	suggestionStarter = "Start with a beginner-friendly skill like 'Public Speaking Basics'."
)

// SkillInput carries the user-supplied fields of a new skill.
type SkillInput struct {
	Title        string
	Description  string
	Category     string
	Availability string
}

// SkillTotals mirrors the dashboard counters.
type SkillTotals struct {
	All        int64 `json:"all"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"in_progress"`
}

// Summary is the dashboard view for a user.
type Summary struct {
	Username        string      `json:"username"`
	Totals          SkillTotals `json:"totals"`
	LastActiveSkill *string     `json:"last_active_skill"`
	AISuggestion    string      `json:"ai_suggestion"`
}

// SkillService coordinates skill persistence, search and notifications.
type SkillService struct {
	DB     *gorm.DB
	Notify Notifier
	Index  *search.Index

	// MarketLimit caps the marketplace list.
	MarketLimit int
	// CategoryLocale drives title-casing of categories.
	CategoryLocale language.Tag
}

// NewSkillService constructs a SkillService. idx may be nil to disable search.
func NewSkillService(db *gorm.DB, n Notifier, idx *search.Index) *SkillService {
	return &SkillService{
		DB:             db,
		Notify:         notifierOr(n),
		Index:          idx,
		MarketLimit:    defaultMarketLimit,
		CategoryLocale: language.English,
	}
}

// Create validates and stores a skill owned by owner, then broadcasts it.
// The owner's profile email is copied when a profile exists.
func (s *SkillService) Create(ctx context.Context, owner string, in SkillInput) (*domain.Skill, error) {
	ctx, span := otel.Tracer("services/SkillService").Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", owner)),
	)
	defer span.End()

	sk, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	sk.Owner = owner

	u, err := repo.FindUserByName(ctx, s.DB, owner)
	switch {
	case err == nil:
		sk.OwnerEmail = u.Email
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("load owner profile: %w", err)
	}

	if err := repo.CreateSkill(ctx, s.DB, sk); err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	span.SetAttributes(attribute.String("skill.id", sk.ID))

	if s.Index != nil {
		s.Index.Put(skillDocument(*sk))
	}
	s.Notify.NewSkill(*sk)
	return sk, nil
}

// Market returns other users' skills, newest first.
func (s *SkillService) Market(ctx context.Context, user string) ([]domain.Skill, error) {
	ctx, span := otel.Tracer("services/SkillService").Start(ctx, "Market",
		trace.WithAttributes(attribute.String("user.id", user)),
	)
	defer span.End()
	return repo.ListMarket(ctx, s.DB, user, s.MarketLimit)
}

// Mine returns the caller's own skills.
func (s *SkillService) Mine(ctx context.Context, user string) ([]domain.Skill, error) {
	return repo.ListSkillsByOwner(ctx, s.DB, user)
}

// Delete removes the caller's skill together with its requests and their
// chat history.
func (s *SkillService) Delete(ctx context.Context, user, skillID string) error {
	ctx, span := otel.Tracer("services/SkillService").Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("user.id", user),
			attribute.String("skill.id", skillID),
		),
	)
	defer span.End()

	id, err := parseID(skillID)
	if err != nil {
		return err
	}
	sk, err := repo.GetSkill(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrSkillNotFound
	}
	if err != nil {
		return err
	}
	if sk.Owner != user {
		return ErrForbidden
	}
	if err := repo.DeleteSkillCascade(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSkillNotFound
		}
		return fmt.Errorf("delete skill: %w", err)
	}
	if s.Index != nil {
		s.Index.Remove(id)
	}
	return nil
}

// Search returns up to k of other users' skills matching q, best first.
func (s *SkillService) Search(ctx context.Context, user, q string, k int) ([]domain.Skill, error) {
	ctx, span := otel.Tracer("services/SkillService").Start(ctx, "Search",
		trace.WithAttributes(attribute.String("user.id", user), attribute.Int("k", k)),
	)
	defer span.End()

	if s.Index == nil {
		return []domain.Skill{}, nil
	}
	// Over-fetch so the caller's own skills can be filtered out.
	hits := s.Index.Search(q, k*2)
	if len(hits) == 0 {
		return []domain.Skill{}, nil
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	rows, err := repo.ListSkillsByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Skill, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]domain.Skill, 0, len(hits))
	for _, h := range hits {
		sk, ok := byID[h.ID]
		if !ok || sk.Owner == user {
			continue
		}
		out = append(out, sk)
		if k > 0 && len(out) == k {
			break
		}
	}
	span.SetAttributes(attribute.Int("results", len(out)))
	return out, nil
}

// Reindex rebuilds the search index from the store.
func (s *SkillService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	rows, err := repo.ListAllSkills(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	docs := make([]search.Document, len(rows))
	for i, r := range rows {
		docs[i] = skillDocument(r)
	}
	s.Index.Replace(docs)
	return s.Index.Len(), nil
}

// Summary builds the dashboard view for user.
func (s *SkillService) Summary(ctx context.Context, user string) (*Summary, error) {
	ctx, span := otel.Tracer("services/SkillService").Start(ctx, "Summary",
		trace.WithAttributes(attribute.String("user.id", user)),
	)
	defer span.End()

	t, err := repo.CountSkills(ctx, s.DB, user)
	if err != nil {
		return nil, err
	}
	last, err := repo.LastActiveSkill(ctx, s.DB, user)
	if err != nil {
		return nil, err
	}
	out := &Summary{
		Username: user,
		Totals:   SkillTotals{All: t.Total, Completed: t.Completed, InProgress: t.InProgress},
	}
	if last != nil {
		title := last.Title
		out.LastActiveSkill = &title
	}
	if t.InProgress > 0 {
		out.AISuggestion = suggestionActive
	} else {
		out.AISuggestion = suggestionStarter
	}
	return out, nil
}

func (s *SkillService) normalize(in SkillInput) (*domain.Skill, error) {
	title := collapseSpaces(in.Title)
	desc := strings.TrimSpace(in.Description)
	avail := collapseSpaces(in.Availability)
	cat := collapseSpaces(in.Category)
	if cat != "" {
		cat = cases.Title(s.CategoryLocale).String(strings.ToLower(cat))
	}

	for _, f := range []struct {
		name, val string
		max       int
	}{
		{"title", title, maxTitleRunes},
		{"description", desc, maxDescriptionRunes},
		{"category", cat, maxCategoryRunes},
		{"availability", avail, maxAvailabilityRunes},
	} {
		if f.val == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidSkill, f.name)
		}
		if utf8.RuneCountInString(f.val) > f.max {
			return nil, fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidSkill, f.name, f.max)
		}
	}
	return &domain.Skill{Title: title, Description: desc, Category: cat, Availability: avail}, nil
}

func skillDocument(s domain.Skill) search.Document {
	return search.Document{ID: s.ID, Text: s.Title + " " + s.Category + " " + s.Description}
}

func collapseSpaces(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
