package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sitechat/internal/model"

	"go.uber.org/zap"
)

// FileNoteRepository keeps one JSON array per project in
// <dir>/<project_id>_notes.json. Writes within one process are serialised;
// separate processes sharing the directory are not coordinated.
type FileNoteRepository struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

func NewFileNoteRepository(dir string, logger *zap.Logger) (*FileNoteRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create notes directory: %w", err)
	}
	return &FileNoteRepository{dir: dir, logger: logger}, nil
}

func (r *FileNoteRepository) path(projectID string) string {
	return filepath.Join(r.dir, projectID+"_notes.json")
}

func (r *FileNoteRepository) List(_ context.Context, projectID string) ([]model.Note, error) {
	if err := validProjectID(projectID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(projectID)
}

func (r *FileNoteRepository) Add(_ context.Context, projectID string, note model.Note) (model.Note, error) {
	if err := validProjectID(projectID); err != nil {
		return model.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load(projectID)
	if err != nil {
		return model.Note{}, err
	}

	note.ID = nextNoteID(notes)
	notes = append(notes, note)

	if err := r.save(projectID, notes); err != nil {
		return model.Note{}, err
	}

	r.logger.Debug("Note stored",
		zap.String("project_id", projectID),
		zap.Int("note_id", note.ID),
	)
	return note, nil
}

func (r *FileNoteRepository) Delete(_ context.Context, projectID string, noteID int) error {
	if err := validProjectID(projectID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load(projectID)
	if err != nil {
		return err
	}

	kept := notes[:0]
	for _, n := range notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notes) {
		return ErrNoteNotFound
	}
	return r.save(projectID, kept)
}

// Ping checks the notes directory is still there.
func (r *FileNoteRepository) Ping(_ context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", r.dir)
	}
	return nil
}

// load returns an empty slice when the project has no notes file yet.
func (r *FileNoteRepository) load(projectID string) ([]model.Note, error) {
	data, err := os.ReadFile(r.path(projectID))
	if errors.Is(err, os.ErrNotExist) {
		return []model.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notes for %s: %w", projectID, err)
	}

	notes := []model.Note{}
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes for %s: %w", projectID, err)
	}
	return notes, nil
}

// save writes through a temp file so a crash never leaves a truncated array.
func (r *FileNoteRepository) save(projectID string, notes []model.Note) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, projectID+"_notes-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp notes file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write notes for %s: %w", projectID, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), r.path(projectID)); err != nil {
		return fmt.Errorf("failed to replace notes for %s: %w", projectID, err)
	}
	return nil
}
