package workflow

import (
	"context"

	"actionTracker/internal/logger"
	"actionTracker/internal/models/actionitem"

	"go.uber.org/zap"
)

// LogSender only records the follow-up in the log.
type LogSender struct{}

func (LogSender) SendFollowUp(_ context.Context, it actionitem.Item) error {
	to := make([]string, 0, len(it.AssignedTo))
	for _, p := range it.AssignedTo {
		to = append(to, string(p))
	}
	logger.Info("Workflow: Напоминание отправлено",
		zap.String("id", it.ID),
		zap.String("title", it.Title),
		zap.Strings("assigned_to", to),
	)
	return nil
}
