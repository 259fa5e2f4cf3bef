package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medtriage/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a submission does not exist
var ErrNotFound = errors.New("submission not found")

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id                BIGSERIAL PRIMARY KEY,
	name              TEXT NOT NULL,
	email             TEXT NOT NULL,
	transcript        TEXT NOT NULL DEFAULT '',
	urgency_score     DOUBLE PRECISION NOT NULL,
	urgency_rank      SMALLINT NOT NULL,
	severity          TEXT NOT NULL,
	detected_symptoms JSONB NOT NULL DEFAULT '[]'::jsonb,
	recommendation    TEXT NOT NULL,
	confidence        DOUBLE PRECISION NOT NULL,
	ai_classification TEXT NOT NULL DEFAULT '',
	analysis_method   TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_submissions_urgency ON submissions (urgency_rank ASC, urgency_score DESC, created_at DESC);
`

const submissionColumns = `
	id, name, email, transcript, urgency_score, urgency_rank, severity,
	detected_symptoms, recommendation, confidence, ai_classification,
	analysis_method, created_at`

const insertSubmissionSQL = `
	INSERT INTO submissions (
		name, email, transcript, urgency_score, urgency_rank, severity,
		detected_symptoms, recommendation, confidence, ai_classification,
		analysis_method
	) VALUES (
		:name, :email, :transcript, :urgency_score, :urgency_rank, :severity,
		:detected_symptoms, :recommendation, :confidence, :ai_classification,
		:analysis_method
	)
	RETURNING id, created_at`

const (
	recentOrder  = "created_at DESC, id DESC"
	urgencyOrder = "urgency_rank ASC, urgency_score DESC, created_at DESC"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the submissions table and its indexes if missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save inserts a submission and fills in its generated ID and timestamp
func (r *PostgresRepository) Save(ctx context.Context, s *model.Submission) error {
	query, args, err := insertSubmissionQuery(s)
	if err != nil {
		return err
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// insertSubmissionQuery binds s into the insert statement using $n placeholders
func insertSubmissionQuery(s *model.Submission) (string, []interface{}, error) {
	query, args, err := sqlx.Named(insertSubmissionSQL, s)
	if err != nil {
		return "", nil, fmt.Errorf("failed to bind submission: %w", err)
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}

// Get retrieves a single submission by its ID
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*model.Submission, error) {
	var submission model.Submission
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, submissionColumns)

	err := r.db.GetContext(ctx, &submission, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

// ListRecent returns submissions newest first
func (r *PostgresRepository) ListRecent(ctx context.Context, limit, offset int) ([]model.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM submissions
		ORDER BY %s
		LIMIT $1 OFFSET $2
	`, submissionColumns, recentOrder)

	submissions := []model.Submission{}
	if err := r.db.SelectContext(ctx, &submissions, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// ListByUrgency returns submissions most urgent first
func (r *PostgresRepository) ListByUrgency(ctx context.Context, limit int) ([]model.Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM submissions
		ORDER BY %s
		LIMIT $1
	`, submissionColumns, urgencyOrder)

	submissions := []model.Submission{}
	if err := r.db.SelectContext(ctx, &submissions, query, limit); err != nil {
		return nil, fmt.Errorf("failed to rank submissions: %w", err)
	}
	return submissions, nil
}
