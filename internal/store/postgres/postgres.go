package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

//go:embed schema.sql
var schemaSQL string

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users         { return &users{db: s.db} }
func (s *pgStore) Diaries() store.Diaries     { return &diaries{db: s.db} }
func (s *pgStore) Feedbacks() store.Feedbacks { return &feedbacks{db: s.db} }
func (s *pgStore) Usage() store.Usage         { return &usage{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SchemaStatements returns the statements of the embedded schema.sql in order.
func SchemaStatements() []string {
	var out []string
	for _, p := range strings.Split(schemaSQL, ";") {
		var lines []string
		for _, l := range strings.Split(p, "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), "--") {
				continue
			}
			lines = append(lines, l)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range SchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, username, picture_url)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, out.UserID, out.Email, out.Username, out.PictureURL)
	if err := row.Scan(&out.CreationTime); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, model.NewValidationError("user already exists: " + out.UserID)
		}
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, username, picture_url, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.Username, &out.PictureURL, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
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
	row := d.db.QueryRowContext(ctx, `
        INSERT INTO diaries (diary_id, user_id, content, diary_date, creation_time)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time
    `, out.DiaryID, out.UserID, out.Content, out.Date, out.CreationTime)
	if err := row.Scan(&out.CreationTime); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (d *diaries) Get(ctx context.Context, diaryID string) (*model.Diary, error) {
	var out model.Diary
	row := d.db.QueryRowContext(ctx, `
        SELECT diary_id, user_id, content, diary_date, creation_time
        FROM diaries WHERE diary_id=$1
    `, diaryID)
	if err := row.Scan(&out.DiaryID, &out.UserID, &out.Content, &out.Date, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Delete relies on ON DELETE CASCADE to remove the diary's feedback.
func (d *diaries) Delete(ctx context.Context, diaryID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM diaries WHERE diary_id=$1`, diaryID)
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
	row := f.db.QueryRowContext(ctx, `
        INSERT INTO ai_feedbacks (feedback_id, user_id, diary_id, summary, response, feedback_style, creation_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING creation_time
    `, out.FeedbackID, out.UserID, out.DiaryID, out.Summary, out.Response, string(out.Style), out.CreationTime)
	if err := row.Scan(&out.CreationTime); err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return nil, model.ErrDuplicateFeedback
		case pgForeignKeyViolation:
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
	if err := r.Scan(&out.FeedbackID, &out.UserID, &out.DiaryID, &out.Summary, &out.Response, &style, &out.CreationTime); err != nil {
		return nil, err
	}
	out.Style = model.FeedbackStyle(style)
	return &out, nil
}

func (f *feedbacks) GetByDiaryID(ctx context.Context, diaryID string) (*model.Feedback, error) {
	row := f.db.QueryRowContext(ctx, `SELECT `+feedbackColumns+` FROM ai_feedbacks WHERE diary_id=$1`, diaryID)
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
        WHERE user_id=$1 AND creation_time >= $2 AND creation_time < $3
        ORDER BY creation_time ASC, feedback_id ASC
    `, userID, from, to)
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
	res, err := f.db.ExecContext(ctx, `DELETE FROM ai_feedbacks WHERE feedback_id=$1`, feedbackID)
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
        SELECT usage_count FROM daily_feedback_usage WHERE user_id=$1 AND usage_date=$2
    `, userID, date).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// TryConsume is a single upsert: the conflict branch only fires below the
// limit, so a full row yields no RETURNING row.
func (u *usage) TryConsume(ctx context.Context, userID string, date strfmt.Date, limit int) (int, error) {
	if limit <= 0 {
		return 0, model.NewQuotaExceededError(limit)
	}
	var n int
	err := u.db.QueryRowContext(ctx, `
        INSERT INTO daily_feedback_usage (user_id, usage_date, usage_count)
        VALUES ($1, $2, 1)
        ON CONFLICT (user_id, usage_date) DO UPDATE
            SET usage_count = daily_feedback_usage.usage_count + 1
            WHERE daily_feedback_usage.usage_count < $3
        RETURNING usage_count
    `, userID, date, limit).Scan(&n)
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
        WHERE user_id=$1 AND usage_date=$2 AND usage_count > 0
        RETURNING usage_count
    `, userID, date).Scan(&n)
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
