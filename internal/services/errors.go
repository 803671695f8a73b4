// Package services defines the business logic for skills, exchange
// requests, chat and profiles. This file centralizes service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// Lookup errors.
var (
	// ErrSkillNotFound indicates that the referenced skill does not exist.
	ErrSkillNotFound = errors.New("skill not found")

	// ErrRequestNotFound indicates that the referenced exchange request does
	// not exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrUserNotFound indicates that no profile exists for the user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidID is returned when a supplied identifier is not a UUID.
	ErrInvalidID = errors.New("invalid identifier")
)

// Authorization errors.
var (
	// ErrForbidden is returned when the caller is not allowed to act on the
	// resource (not a participant, not the owner, not the recipient).
	ErrForbidden = errors.New("forbidden")

	// ErrSelfRequest is returned when a user requests their own skill.
	ErrSelfRequest = errors.New("you cannot request your own skill")
)

// Validation errors.
var (
	// ErrInvalidStatus is returned when a response action is not one of
	// accepted or declined.
	ErrInvalidStatus = errors.New("status must be accepted or declined")

	// ErrEmptyContent is returned for blank chat messages.
	ErrEmptyContent = errors.New("content is empty")

	// ErrContentTooLong is returned when a chat message exceeds the
	// configured rune limit.
	ErrContentTooLong = errors.New("content too long")

	// ErrInvalidSkill wraps field-level skill validation failures.
	ErrInvalidSkill = errors.New("invalid skill")
)

// State errors.
var (
	// ErrAlreadyResponded is returned when a request is no longer pending.
	ErrAlreadyResponded = errors.New("request already responded")

	// ErrRequestNotAccepted is returned when chat requires an accepted
	// exchange and the request is still pending or was declined.
	ErrRequestNotAccepted = errors.New("request not accepted")
)
