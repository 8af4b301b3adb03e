package repository

import (
	"context"
	"errors"
	"fmt"

	"sitechat/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const noteSchema = `
CREATE TABLE IF NOT EXISTS project_notes (
    project_id TEXT        NOT NULL,
    id         INTEGER     NOT NULL,
    text       TEXT        NOT NULL,
    noted_at   TEXT        NOT NULL,
    user_id    TEXT        NOT NULL,
    PRIMARY KEY (project_id, id)
)`

// Concurrent inserts for one project can compute the same next id; the loser
// hits the primary key and tries again.
const maxInsertAttempts = 5

const uniqueViolation = "23505"

// noteDB is the part of *pgxpool.Pool the repository uses.
type noteDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresNoteRepository keeps notes in the project_notes table. Note ids are
// numbered per project, like the file backend.
type PostgresNoteRepository struct {
	db     noteDB
	logger *zap.Logger
}

func NewPostgresNoteRepository(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) (*PostgresNoteRepository, error) {
	if _, err := db.Exec(ctx, noteSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure project_notes table: %w", err)
	}
	return &PostgresNoteRepository{db: db, logger: logger}, nil
}

func (r *PostgresNoteRepository) List(ctx context.Context, projectID string) ([]model.Note, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, text, noted_at, user_id
        FROM project_notes
        WHERE project_id = $1
        ORDER BY id
    `, projectID)
	if err != nil {
		r.logger.Error("Failed to list notes", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}

	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Note, error) {
		var n model.Note
		err := row.Scan(&n.ID, &n.Text, &n.Date, &n.User)
		return n, err
	})
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

func (r *PostgresNoteRepository) Add(ctx context.Context, projectID string, note model.Note) (model.Note, error) {
	query := `
        INSERT INTO project_notes (project_id, id, text, noted_at, user_id)
        SELECT $1, COALESCE(MAX(id), 0) + 1, $2, $3, $4
        FROM project_notes
        WHERE project_id = $1
        RETURNING id
    `
	var err error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		err = r.db.QueryRow(ctx, query, projectID, note.Text, note.Date, note.User).Scan(&note.ID)
		if !isUniqueViolation(err) {
			break
		}
		r.logger.Warn("Note id collision, retrying",
			zap.String("project_id", projectID),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		r.logger.Error("Failed to insert note", zap.String("project_id", projectID), zap.Error(err))
		return model.Note{}, err
	}

	r.logger.Info("Note inserted successfully",
		zap.String("project_id", projectID),
		zap.Int("note_id", note.ID),
	)
	return note, nil
}

func (r *PostgresNoteRepository) Delete(ctx context.Context, projectID string, noteID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM project_notes WHERE project_id = $1 AND id = $2`, projectID, noteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *PostgresNoteRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
