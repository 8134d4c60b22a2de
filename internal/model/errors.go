package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateFeedback is returned when a diary already has feedback.
	ErrDuplicateFeedback = errors.New("feedback already exists for diary")
)

// NotFoundError reports a missing domain entity.
type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is lets errors.Is(err, ErrNotFound) match NotFoundError values.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError for entity.
func NewNotFoundError(entity string) NotFoundError {
	return NotFoundError{Entity: entity}
}

// IsNotFoundError checks if an error is a NotFoundError (including wrapped errors)
func IsNotFoundError(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// AccessDeniedError reports a requester acting on a resource it does not own.
type AccessDeniedError struct {
	Action string
}

func (e AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Action)
}

func NewAccessDeniedError(action string) AccessDeniedError {
	return AccessDeniedError{Action: action}
}

func IsAccessDeniedError(err error) bool {
	var ad AccessDeniedError
	return errors.As(err, &ad)
}

// QuotaExceededError reports that the daily generation limit is used up.
type QuotaExceededError struct {
	Limit int
}

func (e QuotaExceededError) Error() string {
	return fmt.Sprintf("daily feedback limit exceeded (max %d)", e.Limit)
}

func NewQuotaExceededError(limit int) QuotaExceededError {
	return QuotaExceededError{Limit: limit}
}

func IsQuotaExceededError(err error) bool {
	var qe QuotaExceededError
	return errors.As(err, &qe)
}

// ValidationError represents a rejected request input.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NewValidationError creates a new validation error
func NewValidationError(reason string) ValidationError {
	return ValidationError{Reason: reason}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// AnalysisFailedError wraps a failure of the AI collaborator.
type AnalysisFailedError struct {
	UserID        string
	DiaryID       string
	FeedbackCount int
	Cause         error
}

func (e AnalysisFailedError) Error() string {
	if e.DiaryID != "" {
		return fmt.Sprintf("analysis failed for user %s on diary %s: %v", e.UserID, e.DiaryID, e.Cause)
	}
	if e.FeedbackCount > 0 {
		return fmt.Sprintf("analysis failed for user %s over %d feedbacks: %v", e.UserID, e.FeedbackCount, e.Cause)
	}
	return fmt.Sprintf("analysis failed for user %s: %v", e.UserID, e.Cause)
}

func (e AnalysisFailedError) Unwrap() error { return e.Cause }

func NewAnalysisFailedError(userID string, feedbackCount int, cause error) AnalysisFailedError {
	return AnalysisFailedError{UserID: userID, FeedbackCount: feedbackCount, Cause: cause}
}

// NewDiaryAnalysisFailedError reports a failed generation for a single diary.
func NewDiaryAnalysisFailedError(userID, diaryID string, cause error) AnalysisFailedError {
	return AnalysisFailedError{UserID: userID, DiaryID: diaryID, FeedbackCount: 1, Cause: cause}
}

func IsAnalysisFailedError(err error) bool {
	var af AnalysisFailedError
	return errors.As(err, &af)
}
