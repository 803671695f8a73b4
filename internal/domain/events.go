package domain

// Realtime event type tags.
const (
	EventNewSkill        = "new_skill"
	EventNewRequest      = "new_request"
	EventRequestResponse = "request_response"
	EventChatMessage     = "chat_message"
	EventError           = "error"
)

// NewSkillEvent is broadcast to every connected user after a skill is listed.
type NewSkillEvent struct {
	Type string `json:"type"`
	Data Skill  `json:"data"`
}

// NewRequestEvent notifies a skill owner that someone asked for an exchange.
type NewRequestEvent struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id"`
	FromUser   string `json:"from_user"`
	SkillTitle string `json:"skill_title"`
	SkillID    string `json:"skill_id"`
	Message    string `json:"message"`
}

// RequestResponseEvent notifies the requester of the owner's decision.
// FromUser is the responder.
type RequestResponseEvent struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id"`
	SkillTitle string `json:"skill_title"`
	Status     string `json:"status"`
	FromUser   string `json:"from_user"`
}

// InboundFrame is the only frame a client may send over the socket.
type InboundFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	To        string `json:"to"`
	Content   string `json:"content"`
}

// ErrorFrame is sent back to a client whose frame was rejected.
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSkillEventFor builds the new_skill payload.
func NewSkillEventFor(s Skill) NewSkillEvent {
	return NewSkillEvent{Type: EventNewSkill, Data: s}
}

// NewRequestEventFor builds the new_request payload for the skill owner.
func NewRequestEventFor(r ExchangeRequest, skillTitle string) NewRequestEvent {
	return NewRequestEvent{
		Type:       EventNewRequest,
		RequestID:  r.ID,
		FromUser:   r.FromUser,
		SkillTitle: skillTitle,
		SkillID:    r.SkillID,
		Message:    r.Message,
	}
}

// RequestResponseEventFor builds the request_response payload for the
// requester. The responder is always the request's ToUser.
func RequestResponseEventFor(r ExchangeRequest, skillTitle string) RequestResponseEvent {
	return RequestResponseEvent{
		Type:       EventRequestResponse,
		RequestID:  r.ID,
		SkillTitle: skillTitle,
		Status:     r.Status,
		FromUser:   r.ToUser,
	}
}

// ErrorFrameFor builds the frame sent to a client whose input was rejected.
func ErrorFrameFor(code, message string) ErrorFrame {
	return ErrorFrame{Type: EventError, Code: code, Message: message}
}
