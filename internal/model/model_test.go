package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_UsesLocation(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 2024-03-01 20:00 UTC is already 2024-03-02 in Seoul.
	instant := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", DateOf(instant, time.UTC).String())
	assert.Equal(t, "2024-03-02", DateOf(instant, seoul).String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d.String())

	_, err = ParseDate("31/01/2024")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestDateHelpers(t *testing.T) {
	a, _ := ParseDate("2024-01-01")
	b, _ := ParseDate("2024-01-07")

	assert.True(t, DateBefore(a, b))
	assert.False(t, DateBefore(b, a))
	assert.False(t, DateBefore(a, a))
	assert.True(t, SameDate(a, a))
	assert.Equal(t, 7, DaySpan(a, b))
	assert.Equal(t, 1, DaySpan(a, a))

	from, to := DayBounds(a, b, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), to)
}

func TestParseFeedbackStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    FeedbackStyle
		wantErr bool
	}{
		{"", StyleEncouraging, false},
		{"ENCOURAGING", StyleEncouraging, false},
		{" honest ", StyleHonest, false},
		{"empathetic", StyleEmpathetic, false},
		{"sarcastic", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFeedbackStyle(tt.in)
			if tt.wantErr {
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorHelpers_SeeThroughWrapping(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("outer: %w", err) }

	assert.True(t, IsNotFoundError(wrap(NewNotFoundError("diary"))))
	assert.True(t, errors.Is(wrap(NewNotFoundError("diary")), ErrNotFound))
	assert.True(t, IsAccessDeniedError(wrap(NewAccessDeniedError("delete feedback"))))
	assert.True(t, IsQuotaExceededError(wrap(NewQuotaExceededError(2))))
	assert.True(t, IsValidationError(wrap(NewValidationError("bad"))))

	af := NewAnalysisFailedError("u1", 3, context.DeadlineExceeded)
	assert.True(t, IsAnalysisFailedError(wrap(af)))
	assert.True(t, errors.Is(af, context.DeadlineExceeded))
	assert.Contains(t, af.Error(), "3 feedbacks")

	df := NewDiaryAnalysisFailedError("u1", "d-42", context.DeadlineExceeded)
	assert.Equal(t, 1, df.FeedbackCount)
	assert.Contains(t, df.Error(), "diary d-42")
	assert.True(t, errors.Is(df, context.DeadlineExceeded))

	assert.False(t, IsNotFoundError(ErrDuplicateFeedback))
	assert.Equal(t, "daily feedback limit exceeded (max 2)", NewQuotaExceededError(2).Error())
}
