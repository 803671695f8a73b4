package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/skillswap-backend/internal/domain"
	"github.com/tbourn/skillswap-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedSkill(t *testing.T, db *gorm.DB, owner, title string) *domain.Skill {
	t.Helper()
	s := &domain.Skill{Title: title, Description: "desc", Category: "Music", Availability: "weekends", Owner: owner}
	if err := repo.CreateSkill(context.Background(), db, s); err != nil {
		t.Fatalf("seed skill: %v", err)
	}
	return s
}

func seedRequest(t *testing.T, db *gorm.DB, skill *domain.Skill, from, status string) *domain.ExchangeRequest {
	t.Helper()
	r := &domain.ExchangeRequest{SkillID: skill.ID, FromUser: from, ToUser: skill.Owner}
	if err := repo.CreateRequest(context.Background(), db, r); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	if status != domain.StatusPending {
		if err := repo.UpdateRequestStatus(context.Background(), db, r.ID, status); err != nil {
			t.Fatalf("seed status: %v", err)
		}
		r.Status = status
	}
	return r
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// fakeNotifier records every event it is handed. online decides the
// return value of personal deliveries.
type fakeNotifier struct {
	mu        sync.Mutex
	online    map[string]bool
	skills    []domain.Skill
	requests  []domain.ExchangeRequest
	responses []domain.ExchangeRequest
	titles    []string
	messages  []domain.ChatMessage
}

func (f *fakeNotifier) NewSkill(s domain.Skill) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skills = append(f.skills, s)
	return len(f.online)
}

func (f *fakeNotifier) NewRequest(r domain.ExchangeRequest, title string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
	f.titles = append(f.titles, title)
	return f.online[r.ToUser]
}

func (f *fakeNotifier) RequestResponse(r domain.ExchangeRequest, title string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, r)
	f.titles = append(f.titles, title)
	return f.online[r.FromUser]
}

func (f *fakeNotifier) ChatMessage(m domain.ChatMessage) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return f.online[m.ToUser]
}

// fixedClock returns the given instants in order, then repeats the last.
func fixedClock(ts ...time.Time) func() time.Time {
	var i int
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return t
	}
}
