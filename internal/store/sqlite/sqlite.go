// Package sqlite is a single-file store.Store for local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

// Open opens (or creates) a SQLite database at the given path with WAL journaling
// and foreign keys enabled. Writes go through a single connection.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates core tables if they do not exist.
// Timestamps are stored as unix nanoseconds so range scans order correctly.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            username TEXT NOT NULL,
            picture_url TEXT,
            creation_time INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS diaries (
            diary_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            diary_date TEXT NOT NULL,
            creation_time INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS ai_feedbacks (
            feedback_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
            diary_id TEXT NOT NULL UNIQUE REFERENCES diaries(diary_id) ON DELETE CASCADE,
            summary TEXT,
            response TEXT NOT NULL,
            feedback_style TEXT NOT NULL,
            creation_time INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS ai_feedbacks_user_time_idx ON ai_feedbacks(user_id, creation_time);`,
		`CREATE TABLE IF NOT EXISTS daily_feedback_usage (
            user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
            usage_date TEXT NOT NULL,
            usage_count INTEGER NOT NULL DEFAULT 0 CHECK (usage_count >= 0),
            PRIMARY KEY (user_id, usage_date)
        );`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}

// NewWithDB constructs a SQLite store. The schema must already exist.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Users() store.Users         { return &users{db: s.db} }
func (s *liteStore) Diaries() store.Diaries     { return &diaries{db: s.db} }
func (s *liteStore) Feedbacks() store.Feedbacks { return &feedbacks{db: s.db} }
func (s *liteStore) Usage() store.Usage         { return &usage{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type constraint int

const (
	noConstraint constraint = iota
	uniqueConstraint
	foreignKeyConstraint
)

func constraintOf(err error) constraint {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return noConstraint
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return uniqueConstraint
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return foreignKeyConstraint
	}
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := se.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return uniqueConstraint
		case strings.Contains(msg, "FOREIGN KEY"):
			return foreignKeyConstraint
		}
	}
	return noConstraint
}

func nanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, username, picture_url, creation_time)
        VALUES (?,?,?,?,?)
    `, out.UserID, out.Email, out.Username, out.PictureURL, nanos(out.CreationTime))
	if err != nil {
		if constraintOf(err) == uniqueConstraint {
			return nil, model.NewValidationError("user already exists: " + out.UserID)
		}
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	var created int64
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, username, picture_url, creation_time
        FROM users WHERE user_id=?
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.Username, &out.PictureURL, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	out.CreationTime = fromNanos(created)
	return &out, nil
}

// --- Diaries ---
type diaries struct{ db *sql.DB }

func (d *diaries) Create(ctx context.Context, m *model.Diary) (*model.Diary, error) {
	out := *m
	if out.DiaryID == "" {
		out.DiaryID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO diaries (diary_id, user_id, content, diary_date, creation_time)
        VALUES (?,?,?,?,?)
    `, out.DiaryID, out.UserID, out.Content, out.Date.String(), nanos(out.CreationTime))
	if err != nil {
		if constraintOf(err) == foreignKeyConstraint {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (d *diaries) Get(ctx context.Context, diaryID string) (*model.Diary, error) {
	var out model.Diary
	var created int64
	row := d.db.QueryRowContext(ctx, `
        SELECT diary_id, user_id, content, diary_date, creation_time
        FROM diaries WHERE diary_id=?
    `, diaryID)
	if err := row.Scan(&out.DiaryID, &out.UserID, &out.Content, &out.Date, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	out.CreationTime = fromNanos(created)
	return &out, nil
}

func (d *diaries) Delete(ctx context.Context, diaryID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM diaries WHERE diary_id=?`, diaryID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- Feedbacks ---
type feedbacks struct{ db *sql.DB }

func (f *feedbacks) Create(ctx context.Context, m *model.Feedback) (*model.Feedback, error) {
	out := *m
	if out.FeedbackID == "" {
		out.FeedbackID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	_, err := f.db.ExecContext(ctx, `
        INSERT INTO ai_feedbacks (feedback_id, user_id, diary_id, summary, response, feedback_style, creation_time)
        VALUES (?,?,?,?,?,?,?)
    `, out.FeedbackID, out.UserID, out.DiaryID, out.Summary, out.Response, string(out.Style), nanos(out.CreationTime))
	if err != nil {
		switch constraintOf(err) {
		case uniqueConstraint:
			return nil, model.ErrDuplicateFeedback
		case foreignKeyConstraint:
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

const feedbackColumns = `feedback_id, user_id, diary_id, summary, response, feedback_style, creation_time`

type rowScanner interface{ Scan(dest ...any) error }

func scanFeedback(r rowScanner) (*model.Feedback, error) {
	var out model.Feedback
	var style string
	var created int64
	if err := r.Scan(&out.FeedbackID, &out.UserID, &out.DiaryID, &out.Summary, &out.Response, &style, &created); err != nil {
		return nil, err
	}
	out.Style = model.FeedbackStyle(style)
	out.CreationTime = fromNanos(created)
	return &out, nil
}

func (f *feedbacks) GetByDiaryID(ctx context.Context, diaryID string) (*model.Feedback, error) {
	row := f.db.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM ai_feedbacks WHERE diary_id=?`, diaryID)
	out, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return out, err
}

func (f *feedbacks) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*model.Feedback, error) {
	rows, err := f.db.QueryContext(ctx, `
        SELECT `+feedbackColumns+`
        FROM ai_feedbacks
        WHERE user_id=? AND creation_time >= ? AND creation_time < ?
        ORDER BY creation_time ASC, feedback_id ASC
    `, userID, nanos(from), nanos(to))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, fb)
	}
	return res, rows.Err()
}

func (f *feedbacks) Delete(ctx context.Context, feedbackID string) error {
	res, err := f.db.ExecContext(ctx, `DELETE FROM ai_feedbacks WHERE feedback_id=?`, feedbackID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- Usage ---
type usage struct{ db *sql.DB }

func (u *usage) Get(ctx context.Context, userID string, date strfmt.Date) (int, error) {
	var n int
	err := u.db.QueryRowContext(ctx, `
        SELECT usage_count FROM daily_feedback_usage WHERE user_id=? AND usage_date=?
    `, userID, date.String()).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (u *usage) TryConsume(ctx context.Context, userID string, date strfmt.Date, limit int) (int, error) {
	if limit <= 0 {
		return 0, model.NewQuotaExceededError(limit)
	}
	var n int
	err := u.db.QueryRowContext(ctx, `
        INSERT INTO daily_feedback_usage (user_id, usage_date, usage_count)
        VALUES (?, ?, 1)
        ON CONFLICT (user_id, usage_date) DO UPDATE
            SET usage_count = usage_count + 1
            WHERE usage_count < ?
        RETURNING usage_count
    `, userID, date.String(), limit).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return limit, model.NewQuotaExceededError(limit)
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (u *usage) Release(ctx context.Context, userID string, date strfmt.Date) (int, error) {
	var n int
	err := u.db.QueryRowContext(ctx, `
        UPDATE daily_feedback_usage SET usage_count = usage_count - 1
        WHERE user_id=? AND usage_date=? AND usage_count > 0
        RETURNING usage_count
    `, userID, date.String()).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
