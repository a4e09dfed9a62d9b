package ports

import (
	"context"

	"github.com/leejaedus/project-morgan/internal/core/domain"
)

// Tier identifies an analysis capability tier.
type Tier string

const (
	TierQuick Tier = "quick" // cheap, fast classification
	TierDeep  Tier = "deep"  // expensive, contextual analysis
)

// Analyzer is one analysis tier. Implementations must recover provider
// failures internally (heuristic fallback or downgrade) and only return an
// error when no analysis at all could be produced.
type Analyzer interface {
	Tier() Tier
	Analyze(ctx context.Context, msg domain.Message) (domain.Analysis, error)
}

// Source supplies normalized messages from a chat platform.
type Source interface {
	Name() string
	Initialize(ctx context.Context) error
	CollectActivities(ctx context.Context, hours int) ([]domain.Message, error)
}

type Storage interface {
	LoadPatterns(ctx context.Context) ([]domain.LearnedPattern, error)
	SaveFeedback(ctx context.Context, fb domain.Feedback) error
	SaveTodoList(ctx context.Context, list domain.TodoList) error
	SaveUsageSnapshot(ctx context.Context, quickCalls, deepCalls int, estimatedCost float64) error
}

// Notifier delivers a ranked todo digest to the user and reports any rating
// the user submits back through the returned feedback channel.
type Notifier interface {
	SendDigest(ctx context.Context, list domain.TodoList) error
	FeedbackEvents() <-chan domain.Feedback
}
