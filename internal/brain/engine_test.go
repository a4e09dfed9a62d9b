package brain

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

type stubAnalyzer struct {
	tier ports.Tier
	fn   func(ctx context.Context, msg domain.Message) (domain.Analysis, error)
}

func (s stubAnalyzer) Tier() ports.Tier { return s.tier }

func (s stubAnalyzer) Analyze(ctx context.Context, msg domain.Message) (domain.Analysis, error) {
	return s.fn(ctx, msg)
}

func okAnalyzer(tier ports.Tier) stubAnalyzer {
	return stubAnalyzer{tier: tier, fn: func(ctx context.Context, msg domain.Message) (domain.Analysis, error) {
		return domain.Analysis{ModelUsed: string(tier)}, nil
	}}
}

func TestAnalyzeRoutesToTier(t *testing.T) {
	engine := NewEngine(NewRouter(nil), okAnalyzer(ports.TierQuick), okAnalyzer(ports.TierDeep), zap.NewNop())

	analysis, err := engine.Analyze(context.Background(), domain.Message{Text: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "quick", analysis.ModelUsed)

	analysis, err = engine.Analyze(context.Background(), domain.Message{Text: "deadline tomorrow"})
	require.NoError(t, err)
	assert.Equal(t, "deep", analysis.ModelUsed)

	stats := engine.UsageStats()
	assert.Equal(t, 1, stats.QuickCalls)
	assert.Equal(t, 1, stats.DeepCalls)
}

func TestAnalyzeBatchPartialFailure(t *testing.T) {
	quick := stubAnalyzer{tier: ports.TierQuick, fn: func(ctx context.Context, msg domain.Message) (domain.Analysis, error) {
		if msg.ID == "poison" {
			return domain.Analysis{}, errors.New("boom")
		}
		return domain.Analysis{ModelUsed: "quick"}, nil
	}}
	engine := NewEngine(NewRouter(nil), quick, okAnalyzer(ports.TierDeep), zap.NewNop())

	msgs := []domain.Message{
		{ID: "a", Text: "hi"},
		{ID: "poison", Text: "hello"},
		{ID: "b", Text: "yo"},
		{ID: "c", Text: "hey"},
	}
	results := engine.AnalyzeBatch(context.Background(), msgs, 2)
	assert.Len(t, results, 3)

	// The failed call still counted.
	stats := engine.UsageStats()
	assert.Equal(t, 4, stats.QuickCalls)
	assert.Equal(t, 4, stats.TotalCalls)
}

func TestAnalyzeBatchRespectsConcurrencyCap(t *testing.T) {
	var inflight, peak atomic.Int64
	slow := stubAnalyzer{tier: ports.TierQuick, fn: func(ctx context.Context, msg domain.Message) (domain.Analysis, error) {
		cur := inflight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inflight.Add(-1)
		return domain.Analysis{}, nil
	}}
	engine := NewEngine(NewRouter(nil), slow, okAnalyzer(ports.TierDeep), zap.NewNop())

	msgs := make([]domain.Message, 9)
	for i := range msgs {
		msgs[i] = domain.Message{ID: fmt.Sprintf("m%d", i), Text: "hi"}
	}
	results := engine.AnalyzeBatch(context.Background(), msgs, 3)
	assert.Len(t, results, 9)
	assert.LessOrEqual(t, peak.Load(), int64(3))
}

func TestUsageStatsCostAndSplit(t *testing.T) {
	engine := NewEngine(NewRouter(nil), okAnalyzer(ports.TierQuick), okAnalyzer(ports.TierDeep), zap.NewNop())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		engine.Analyze(ctx, domain.Message{Text: "ok"}) // quick
	}
	engine.Analyze(ctx, domain.Message{Text: "budget review"}) // deep

	stats := engine.UsageStats()
	assert.Equal(t, 4, stats.TotalCalls)
	assert.InDelta(t, 0.013, stats.EstimatedCostUSD, 1e-9)
	assert.InDelta(t, 75.0, stats.QuickPercentage, 1e-9)
	assert.InDelta(t, 25.0, stats.DeepPercentage, 1e-9)
}

func TestUsageStatsEmptyEngine(t *testing.T) {
	engine := NewEngine(NewRouter(nil), okAnalyzer(ports.TierQuick), okAnalyzer(ports.TierDeep), nil)
	stats := engine.UsageStats()
	assert.Zero(t, stats.TotalCalls)
	assert.Zero(t, stats.EstimatedCostUSD)
	assert.Zero(t, stats.QuickPercentage)
}

func TestIndependentEnginesDoNotShareCounters(t *testing.T) {
	a := NewEngine(NewRouter(nil), okAnalyzer(ports.TierQuick), okAnalyzer(ports.TierDeep), zap.NewNop())
	b := NewEngine(NewRouter(nil), okAnalyzer(ports.TierQuick), okAnalyzer(ports.TierDeep), zap.NewNop())

	a.Analyze(context.Background(), domain.Message{Text: "hi"})
	assert.Equal(t, 1, a.UsageStats().TotalCalls)
	assert.Equal(t, 0, b.UsageStats().TotalCalls)
}
