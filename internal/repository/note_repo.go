package repository

import (
	"context"
	"errors"
	"regexp"

	"sitechat/internal/model"
)

var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrInvalidProjectID = errors.New("invalid project id")
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NoteRepository stores notes per project. Add assigns the note id.
type NoteRepository interface {
	List(ctx context.Context, projectID string) ([]model.Note, error)
	Add(ctx context.Context, projectID string, note model.Note) (model.Note, error)
	Delete(ctx context.Context, projectID string, noteID int) error
	Ping(ctx context.Context) error
}

func validProjectID(projectID string) error {
	if !projectIDPattern.MatchString(projectID) {
		return ErrInvalidProjectID
	}
	return nil
}

func nextNoteID(notes []model.Note) int {
	next := 1
	for _, n := range notes {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	return next
}
