package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sitechat/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scanRow struct {
	id  int
	err error
}

func (r scanRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int) = r.id
	return nil
}

// scriptedDB answers QueryRow calls from a fixed list of rows.
type scriptedDB struct {
	rows  []scanRow
	calls int
}

func (d *scriptedDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (d *scriptedDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not scripted")
}

func (d *scriptedDB) QueryRow(context.Context, string, ...any) pgx.Row {
	row := d.rows[d.calls]
	d.calls++
	return row
}

func (d *scriptedDB) Ping(context.Context) error { return nil }

func duplicateKey() error {
	return fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
}

func TestPostgresNoteRepository_AddRetriesIDCollision(t *testing.T) {
	db := &scriptedDB{rows: []scanRow{{err: duplicateKey()}, {err: duplicateKey()}, {id: 7}}}
	repo := &PostgresNoteRepository{db: db, logger: zap.NewNop()}

	n, err := repo.Add(context.Background(), "P001", model.Note{Text: "pour slab", Date: "2025-04-01 09:00:00", User: "U001"})
	require.NoError(t, err)
	assert.Equal(t, 7, n.ID)
	assert.Equal(t, "pour slab", n.Text)
	assert.Equal(t, 3, db.calls)
}

func TestPostgresNoteRepository_AddGivesUpAfterRepeatedCollisions(t *testing.T) {
	rows := make([]scanRow, maxInsertAttempts)
	for i := range rows {
		rows[i] = scanRow{err: duplicateKey()}
	}
	db := &scriptedDB{rows: rows}
	repo := &PostgresNoteRepository{db: db, logger: zap.NewNop()}

	_, err := repo.Add(context.Background(), "P001", model.Note{Text: "x"})
	assert.True(t, isUniqueViolation(err))
	assert.Equal(t, maxInsertAttempts, db.calls)
}

func TestPostgresNoteRepository_AddOtherErrorNotRetried(t *testing.T) {
	db := &scriptedDB{rows: []scanRow{{err: errors.New("connection reset")}}}
	repo := &PostgresNoteRepository{db: db, logger: zap.NewNop()}

	_, err := repo.Add(context.Background(), "P001", model.Note{Text: "x"})
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, 1, db.calls)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(duplicateKey()))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
	assert.False(t, isUniqueViolation(nil))
}
