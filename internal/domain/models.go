// Package domain defines the persistence models for users, skills, exchange
// requests and chat messages. These types are mapped with GORM and their JSON
// tags are the external form used on every API and websocket boundary.
package domain

import "time"

// Skill status labels.
const (
	SkillInProgress = "in_progress"
	SkillCompleted  = "completed"
)

// Exchange request status labels. The response action is restricted to the
// two terminal labels; pending is only ever set on creation.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// User is the profile record of a marketplace member. Usernames are the
// identity carried in bearer tokens and on the websocket path.
type User struct {
	ID            string    `json:"_id"            gorm:"type:char(36);primaryKey"`
	Username      string    `json:"username"       gorm:"type:varchar(64);not null;uniqueIndex"`
	Email         string    `json:"email"          gorm:"type:varchar(255);not null;default:''"`
	Bio           string    `json:"bio"            gorm:"type:text;not null;default:''"`
	SkillsOffered string    `json:"skills_offered" gorm:"type:text;not null;default:''"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Skill is a teachable skill listed by its owner.
type Skill struct {
	ID           string    `json:"_id"          gorm:"type:char(36);primaryKey"`
	Title        string    `json:"title"        gorm:"type:varchar(80);not null"`
	Description  string    `json:"description"  gorm:"type:varchar(400);not null"`
	Category     string    `json:"category"     gorm:"type:varchar(64);not null"`
	Availability string    `json:"availability" gorm:"type:varchar(64);not null"`
	Owner        string    `json:"owner"        gorm:"type:varchar(64);not null;index:idx_skill_owner"`
	OwnerEmail   string    `json:"owner_email"  gorm:"type:varchar(255);not null;default:''"`
	Status       string    `json:"status"       gorm:"type:varchar(16);not null;default:'in_progress';check:status IN ('in_progress','completed')"`
	CreatedAt    time.Time `json:"created_at"   gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Skill.
func (Skill) TableName() string { return "skills" }

// ExchangeRequest asks a skill owner (ToUser) for an exchange on behalf of
// FromUser. SkillID, FromUser and ToUser never change after insert; rows are
// removed only by the skill delete cascade.
type ExchangeRequest struct {
	ID        string    `json:"_id"        gorm:"type:char(36);primaryKey"`
	SkillID   string    `json:"skill_id"   gorm:"type:char(36);not null;index"`
	FromUser  string    `json:"from_user"  gorm:"type:varchar(64);not null;index:idx_req_from"`
	ToUser    string    `json:"to_user"    gorm:"type:varchar(64);not null;index:idx_req_to"`
	Message   string    `json:"message"    gorm:"type:text;not null;default:''"`
	Status    string    `json:"status"     gorm:"type:varchar(16);not null;default:'pending'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ExchangeRequest.
func (ExchangeRequest) TableName() string { return "requests" }

// Participant reports whether user is one of the two sides of the request.
func (r *ExchangeRequest) Participant(user string) bool {
	return user != "" && (user == r.FromUser || user == r.ToUser)
}

// Counterpart returns the other side of the request for user, or "" when user
// is not a participant.
func (r *ExchangeRequest) Counterpart(user string) string {
	switch user {
	case r.FromUser:
		return r.ToUser
	case r.ToUser:
		return r.FromUser
	}
	return ""
}

// ChatMessage is an append-only chat line scoped to an exchange request.
// History is ordered by Timestamp, then by insertion order.
type ChatMessage struct {
	ID        string    `json:"_id"        gorm:"type:char(36);primaryKey"`
	RequestID string    `json:"request_id" gorm:"type:char(36);not null;index:idx_req_msgs,priority:1"`
	FromUser  string    `json:"from_user"  gorm:"type:varchar(64);not null"`
	ToUser    string    `json:"to_user"    gorm:"type:varchar(64);not null"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	Timestamp time.Time `json:"timestamp"  gorm:"not null;index:idx_req_msgs,priority:2"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "messages" }
