package scheduler

import (
	"go.uber.org/zap"

	"finbot/internal/conversation"
)

// ConversationSweepJob drops abandoned conversations from an in-memory store.
func ConversationSweepJob(store *conversation.MemoryStore, schedule string, log *zap.SugaredLogger) Job {
	return Job{
		Name:     "conversation_sweep",
		Schedule: schedule,
		Run: func() {
			if removed := store.Sweep(); removed > 0 {
				log.Infow("swept abandoned conversations", "removed", removed, "active", store.Len())
			}
		},
	}
}
