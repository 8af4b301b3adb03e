package chat

import (
	"context"

	"sitechat/pkg/logger"
	"sitechat/pkg/metrics"

	"go.uber.org/zap"
)

// Service wraps the Classifier with logging and intent metrics.
type Service struct {
	classifier *Classifier
	logger     *zap.Logger
}

func NewService(classifier *Classifier, logger *zap.Logger) *Service {
	return &Service{classifier: classifier, logger: logger}
}

func (s *Service) ProcessMessage(ctx context.Context, message, projectID string) Response {
	resp := s.classifier.Classify(message, projectID)

	metrics.IncrementChatIntent(string(resp.Intent))
	logger.WithTrace(ctx, s.logger).Debug("Message classified",
		zap.String("project_id", projectID),
		zap.String("intent", string(resp.Intent)),
		zap.String("code", resp.Code),
		zap.Bool("needs_project", resp.NeedsProject),
		zap.Int("message_len", len(message)),
	)
	return resp
}
