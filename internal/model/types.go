package model

import (
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// User is an account that owns diaries and feedback.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PictureURL   *string   `json:"pictureUrl,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// UserProfile is the public view of a User.
type UserProfile struct {
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	PictureURL *string `json:"pictureUrl,omitempty"`
}

// Profile returns the public view of u.
func (u *User) Profile() UserProfile {
	return UserProfile{Email: u.Email, Username: u.Username, PictureURL: u.PictureURL}
}

// Diary is a dated free-text entry written by a user.
type Diary struct {
	DiaryID      string      `json:"diaryId"`
	UserID       string      `json:"userId"`
	Content      string      `json:"content"`
	Date         strfmt.Date `json:"date"`
	CreationTime time.Time   `json:"creationTime"`
}

// FeedbackStyle selects the tone of generated feedback.
type FeedbackStyle string

const (
	StyleEncouraging FeedbackStyle = "encouraging"
	StyleHonest      FeedbackStyle = "honest"
	StyleEmpathetic  FeedbackStyle = "empathetic"
)

// ParseFeedbackStyle normalizes s. An empty value selects StyleEncouraging.
func ParseFeedbackStyle(s string) (FeedbackStyle, error) {
	switch FeedbackStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleEncouraging:
		return StyleEncouraging, nil
	case StyleHonest:
		return StyleHonest, nil
	case StyleEmpathetic:
		return StyleEmpathetic, nil
	}
	return "", NewValidationError("unknown feedback style: " + s)
}

// Feedback is the AI-generated response attached to exactly one diary.
type Feedback struct {
	FeedbackID   string        `json:"feedbackId"`
	UserID       string        `json:"userId"`
	DiaryID      string        `json:"diaryId"`
	Summary      *string       `json:"summary,omitempty"`
	Response     string        `json:"response"`
	Style        FeedbackStyle `json:"feedbackStyle"`
	CreationTime time.Time     `json:"creationTime"`
}

// CreatedDate is the calendar date of CreationTime in loc.
func (f *Feedback) CreatedDate(loc *time.Location) strfmt.Date {
	return DateOf(f.CreationTime, loc)
}

// DailyUsage counts feedback generations for one user on one date.
type DailyUsage struct {
	UserID     string      `json:"userId"`
	UsageDate  strfmt.Date `json:"usageDate"`
	UsageCount int         `json:"usageCount"`
}

// DailyUsageSummary reports today's quota state.
type DailyUsageSummary struct {
	Date      strfmt.Date `json:"date"`
	Used      int         `json:"usedCount"`
	Limit     int         `json:"dailyLimit"`
	Remaining int         `json:"remainingCount"`
}

// HistoryItem is a condensed Feedback used in history listings.
type HistoryItem struct {
	FeedbackID      string        `json:"feedbackId"`
	DiaryID         string        `json:"diaryId"`
	Date            strfmt.Date   `json:"date"`
	Style           FeedbackStyle `json:"feedbackStyle"`
	Summary         *string       `json:"summary,omitempty"`
	ResponseExcerpt string        `json:"responseExcerpt"`
}

// FeedbackHistory lists a user's feedback within a date range.
type FeedbackHistory struct {
	StartDate strfmt.Date   `json:"startDate"`
	EndDate   strfmt.Date   `json:"endDate"`
	Items     []HistoryItem `json:"items"`
}

// PeriodReport is the composite analysis over a date range.
type PeriodReport struct {
	StartDate        strfmt.Date `json:"startDate"`
	EndDate          strfmt.Date `json:"endDate"`
	FeedbackCount    int         `json:"feedbackCount"`
	PeriodSummary    string      `json:"periodSummary"`
	EmotionalPattern string      `json:"emotionalPattern"`
	GrowthPattern    string      `json:"growthPattern"`
	Recommendations  string      `json:"recommendations"`
}
