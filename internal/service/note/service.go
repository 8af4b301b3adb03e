package note

import (
	"context"
	"errors"
	"strings"
	"time"

	"sitechat/internal/model"
	"sitechat/internal/repository"
	"sitechat/pkg/logger"
	"sitechat/pkg/metrics"
	"sitechat/pkg/mq"
	"sitechat/pkg/util"

	"go.uber.org/zap"
)

var (
	ErrEmptyNote     = errors.New("note text is required")
	ErrDuplicateNote = errors.New("duplicate note")
)

// Service adds, lists and deletes project notes and publishes a domain event
// for every change. Event publishing is best effort.
type Service struct {
	repo      repository.NoteRepository
	publisher mq.EventPublisher
	deduper   *util.Deduper
	now       func() time.Time
	logger    *zap.Logger
}

// NewService accepts a nil deduper, which disables duplicate suppression.
func NewService(repo repository.NoteRepository, publisher mq.EventPublisher, deduper *util.Deduper, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		deduper:   deduper,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, projectID string) ([]model.Note, error) {
	return s.repo.List(ctx, projectID)
}

// Add stores a note written by userID. An empty userID is recorded as "unknown".
func (s *Service) Add(ctx context.Context, projectID, userID, text string) (model.Note, error) {
	log := logger.WithTrace(ctx, s.logger)

	text = strings.TrimSpace(text)
	if text == "" {
		return model.Note{}, ErrEmptyNote
	}
	if userID == "" {
		userID = "unknown"
	}

	if !s.deduper.AcquireOnce(ctx, "note", projectID, userID, text) {
		metrics.IncrementNoteAdded(projectID, "duplicate")
		return model.Note{}, ErrDuplicateNote
	}

	n, err := s.repo.Add(ctx, projectID, model.Note{
		Text: text,
		Date: s.now().Format(model.NoteDateLayout),
		User: userID,
	})
	if err != nil {
		s.deduper.Release(ctx, "note", projectID, userID, text)
		metrics.IncrementNoteAdded(projectID, "failed")
		log.Error("Failed to add note", zap.String("project_id", projectID), zap.Error(err))
		return model.Note{}, err
	}
	metrics.IncrementNoteAdded(projectID, "stored")

	s.publish(ctx, mq.RoutingNoteAdded, mq.NoteAddedPayload{
		ProjectID: projectID,
		NoteID:    n.ID,
		UserID:    userID,
		Text:      n.Text,
	})

	log.Info("Note added",
		zap.String("project_id", projectID),
		zap.Int("note_id", n.ID),
		zap.String("user_id", userID),
	)
	return n, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string, noteID int) error {
	if err := s.repo.Delete(ctx, projectID, noteID); err != nil {
		return err
	}

	s.publish(ctx, mq.RoutingNoteDeleted, mq.NoteDeletedPayload{
		ProjectID: projectID,
		NoteID:    noteID,
		UserID:    userID,
	})
	logger.WithTrace(ctx, s.logger).Info("Note deleted",
		zap.String("project_id", projectID),
		zap.Int("note_id", noteID),
		zap.String("user_id", userID),
	)
	return nil
}

func (s *Service) publish(ctx context.Context, routingKey string, payload any) {
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
