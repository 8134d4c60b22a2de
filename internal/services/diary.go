package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/auth"
	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

// MaxDiaryContentRunes bounds diary content handed to the AI provider.
const MaxDiaryContentRunes = 10000

// DiaryService manages diary entries. Every access is scoped to the owner.
type DiaryService struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewDiaryService(s store.Store, log zerolog.Logger) *DiaryService {
	return &DiaryService{store: s, log: log, now: time.Now}
}

// CreateDiary stores a new entry dated date for userID.
func (s *DiaryService) CreateDiary(ctx context.Context, userID, content string, date strfmt.Date) (*model.Diary, error) {
	if strings.TrimSpace(content) == "" {
		return nil, model.NewValidationError("content is required")
	}
	if utf8.RuneCountInString(content) > MaxDiaryContentRunes {
		return nil, model.NewValidationError("content is too long")
	}
	if time.Time(date).IsZero() {
		return nil, model.NewValidationError("date is required")
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, storeErr(err, "user")
	}
	d, err := s.store.Diaries().Create(ctx, &model.Diary{
		UserID:       userID,
		Content:      content,
		Date:         date,
		CreationTime: s.now().UTC(),
	})
	if err != nil {
		return nil, storeErr(err, "user")
	}
	s.log.Info().Str("user_id", userID).Str("diary_id", d.DiaryID).Str("date", date.String()).Msg("diary created")
	return d, nil
}

// GetDiary returns one of the user's diaries.
func (s *DiaryService) GetDiary(ctx context.Context, userID, diaryID string) (*model.Diary, error) {
	d, err := s.store.Diaries().Get(ctx, diaryID)
	if err != nil {
		return nil, storeErr(err, "diary")
	}
	if err := auth.CheckOwnership(d.UserID, userID, "read this diary"); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDiary removes one of the user's diaries together with its feedback.
// Deleting a diary never releases quota.
func (s *DiaryService) DeleteDiary(ctx context.Context, userID, diaryID string) error {
	d, err := s.store.Diaries().Get(ctx, diaryID)
	if err != nil {
		return storeErr(err, "diary")
	}
	if err := auth.CheckOwnership(d.UserID, userID, "delete this diary"); err != nil {
		return err
	}
	if err := s.store.Diaries().Delete(ctx, diaryID); err != nil {
		return storeErr(err, "diary")
	}
	s.log.Info().Str("user_id", userID).Str("diary_id", diaryID).Msg("diary deleted")
	return nil
}
