package brain

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

// Rough per-call cost estimates, used only for the usage report.
const (
	quickCallCostUSD = 0.001
	deepCallCostUSD  = 0.01
)

// UsageStats is a snapshot of provider call counts and estimated spend.
type UsageStats struct {
	QuickCalls       int     `json:"quick_calls"`
	DeepCalls        int     `json:"deep_calls"`
	TotalCalls       int     `json:"total_calls"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	QuickPercentage  float64 `json:"quick_percentage"`
	DeepPercentage   float64 `json:"deep_percentage"`
}

// AnalyzedMessage pairs a message with its analysis. Batch output order is
// not meaningful.
type AnalyzedMessage struct {
	Message  domain.Message
	Analysis domain.Analysis
}

// Engine routes messages to the right analysis tier and runs batches under
// a concurrency cap. Usage counters live on the engine instance, so
// independent engines never share state.
type Engine struct {
	router *Router
	quick  ports.Analyzer
	deep   ports.Analyzer
	log    *zap.Logger

	mu         sync.Mutex
	quickCalls int
	deepCalls  int
}

func NewEngine(router *Router, quick, deep ports.Analyzer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{router: router, quick: quick, deep: deep, log: log}
}

// Analyze runs one message through the tier the router selects. The tier
// counter is bumped when the call is dispatched, so failed calls count too.
func (e *Engine) Analyze(ctx context.Context, msg domain.Message) (domain.Analysis, error) {
	tier := e.router.SelectTier(msg)

	analyzer := e.quick
	if tier == ports.TierDeep {
		analyzer = e.deep
	}
	e.recordCall(tier)

	e.log.Debug("analyzing message",
		zap.String("tier", string(tier)),
		zap.String("channel", msg.ChannelName),
		zap.Int("text_len", len(msg.Text)))

	return analyzer.Analyze(ctx, msg)
}

// AnalyzeBatch analyzes messages with at most maxConcurrent provider calls
// in flight. A failed message is logged and dropped; it never aborts the
// batch. Result order is unspecified.
func (e *Engine) AnalyzeBatch(ctx context.Context, msgs []domain.Message, maxConcurrent int) []AnalyzedMessage {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []AnalyzedMessage
	)

	for _, msg := range msgs {
		if err := sem.Acquire(ctx, 1); err != nil {
			e.log.Warn("batch canceled", zap.Error(err))
			break
		}

		wg.Add(1)
		go func(msg domain.Message) {
			defer wg.Done()
			defer sem.Release(1)

			analysis, err := e.Analyze(ctx, msg)
			if err != nil {
				e.log.Warn("analysis failed, dropping message",
					zap.String("message_id", msg.ID),
					zap.String("channel", msg.ChannelName),
					zap.Error(err))
				return
			}

			mu.Lock()
			results = append(results, AnalyzedMessage{Message: msg, Analysis: analysis})
			mu.Unlock()
		}(msg)
	}

	wg.Wait()
	return results
}

func (e *Engine) recordCall(tier ports.Tier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tier == ports.TierDeep {
		e.deepCalls++
	} else {
		e.quickCalls++
	}
}

// UsageStats reports every call made so far, including ones whose messages
// were later dropped.
func (e *Engine) UsageStats() UsageStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.quickCalls + e.deepCalls
	stats := UsageStats{
		QuickCalls: e.quickCalls,
		DeepCalls:  e.deepCalls,
		TotalCalls: total,
	}

	cost := float64(e.quickCalls)*quickCallCostUSD + float64(e.deepCalls)*deepCallCostUSD
	stats.EstimatedCostUSD = math.Round(cost*1000) / 1000

	denom := float64(total)
	if total == 0 {
		denom = 1
	}
	stats.QuickPercentage = math.Round(float64(e.quickCalls)/denom*1000) / 10
	stats.DeepPercentage = math.Round(float64(e.deepCalls)/denom*1000) / 10

	return stats
}
