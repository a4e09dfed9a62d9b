package priority

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leejaedus/project-morgan/internal/core/domain"
)

// mondayMorning is a fixed Monday 08:00 reference time.
var mondayMorning = time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)

func newCalculator() *Calculator {
	return NewCalculator(DefaultConfig())
}

func TestScoreToPriorityBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.Priority
	}{
		{0.0, domain.PriorityLow},
		{0.39, domain.PriorityLow},
		{0.4, domain.PriorityMedium},
		{0.59, domain.PriorityMedium},
		{0.6, domain.PriorityHigh},
		{0.79, domain.PriorityHigh},
		{0.8, domain.PriorityUrgent},
		{1.0, domain.PriorityUrgent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scoreToPriority(tc.score), "score %.2f", tc.score)
	}
}

func TestAdjustedWeightsSumToOne(t *testing.T) {
	activities := []domain.ActivityType{
		domain.ActivityMention,
		domain.ActivityDM,
		domain.ActivityThreadReply,
		domain.ActivityChannelMessage,
	}
	for _, activity := range activities {
		w := adjustedWeights(domain.Message{ActivityType: activity})
		sum := w.senderAuthority + w.timeUrgency + w.contentImportance + w.personalPatterns
		assert.InDelta(t, 1.0, sum, 1e-9, "activity %s", activity)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	calc := newCalculator()
	msg := domain.Message{
		ChannelName:  "engineering",
		Username:     "bob",
		Text:         "Could you check the deploy pipeline?",
		Timestamp:    mondayMorning,
		ActivityType: domain.ActivityMention,
		MentionsMe:   true,
	}
	analysis := domain.Analysis{
		ActionRequired: true,
		UrgencyScore:   0.6,
		Complexity:     "medium",
		WorkType:       domain.WorkSupport,
		EmotionalTone:  "neutral",
	}

	first := calc.Calculate(msg, analysis, nil, mondayMorning)
	second := calc.Calculate(msg, analysis, nil, mondayMorning)
	assert.Equal(t, first, second)
}

func TestCalculateUrgentDM(t *testing.T) {
	calc := newCalculator()
	msg := domain.Message{
		ChannelName:  "general",
		Username:     "sarah",
		Text:         "We need your input on the vendor choice before standup.",
		Timestamp:    mondayMorning,
		ActivityType: domain.ActivityDM,
		MentionsMe:   true,
	}
	analysis := domain.Analysis{
		ActionRequired:   true,
		UrgencyScore:     0.9,
		Complexity:       "complex",
		WorkType:         domain.WorkDecision,
		EmotionalTone:    "urgent",
		EstimatedMinutes: 45,
	}

	score := calc.Calculate(msg, analysis, nil, mondayMorning)
	require.GreaterOrEqual(t, score.FinalScore, 0.8)
	assert.Equal(t, domain.PriorityUrgent, score.Level)
	assert.Equal(t, "within 30 minutes", score.RecommendedActionTime)
	assert.NotEmpty(t, score.Reasoning)
}

func TestCalculateLowChatter(t *testing.T) {
	calc := newCalculator()
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC) // Thursday
	msg := domain.Message{
		ChannelName:  "random",
		Username:     "bob",
		Text:         "got it, thanks",
		Timestamp:    now.Add(-48 * time.Hour),
		ActivityType: domain.ActivityChannelMessage,
	}
	analysis := domain.Analysis{
		ActionRequired: false,
		UrgencyScore:   0.1,
		Complexity:     "simple",
		WorkType:       domain.WorkOther,
		EmotionalTone:  "neutral",
	}

	score := calc.Calculate(msg, analysis, nil, now)
	require.Less(t, score.FinalScore, 0.4)
	assert.Equal(t, domain.PriorityLow, score.Level)
	assert.Equal(t, "whenever convenient", score.RecommendedActionTime)
}

func TestSenderPatternRaisesPersonalWeight(t *testing.T) {
	calc := newCalculator()
	msg := domain.Message{
		ChannelName:  "engineering",
		Username:     "alice_dev",
		Text:         "ptal at the migration plan",
		Timestamp:    mondayMorning,
		ActivityType: domain.ActivityChannelMessage,
	}
	analysis := domain.Analysis{WorkType: domain.WorkOther, EmotionalTone: "neutral"}

	baseline := calc.Calculate(msg, analysis, nil, mondayMorning)
	assert.InDelta(t, 0.5, baseline.PersonalWeightScore, 1e-9)

	patterns := []domain.LearnedPattern{
		{Type: "sender", Value: "alice", WeightAdjustment: 0.3, Confidence: 1.0},
	}
	withPattern := calc.Calculate(msg, analysis, patterns, mondayMorning)
	assert.InDelta(t, 0.8, withPattern.PersonalWeightScore, 1e-9)
}

func TestPatternsAccumulateAndClamp(t *testing.T) {
	calc := newCalculator()
	msg := domain.Message{
		ChannelName:  "engineering",
		Username:     "alice",
		Text:         "release checklist",
		Timestamp:    mondayMorning,
		ActivityType: domain.ActivityChannelMessage,
	}
	analysis := domain.Analysis{WorkType: domain.WorkReview}

	patterns := []domain.LearnedPattern{
		{Type: "sender", Value: "alice", WeightAdjustment: 0.4, Confidence: 1.0},
		{Type: "work_type", Value: "review", WeightAdjustment: 0.4, Confidence: 0.5},
		{Type: "channel", Value: "marketing", WeightAdjustment: 0.9, Confidence: 1.0}, // no match
	}
	score := calc.Calculate(msg, analysis, patterns, mondayMorning)
	// 0.5 + 0.4 + 0.2 clamps to 1.0
	assert.InDelta(t, 1.0, score.PersonalWeightScore, 1e-9)
}

func TestContentLengthBumpsCountCharacters(t *testing.T) {
	calc := newCalculator()
	analysis := domain.Analysis{WorkType: domain.WorkOther, EmotionalTone: "neutral"}

	// 7 characters (21 bytes) still earns the short-message bump.
	short := calc.contentImportanceScore(domain.Message{Text: strings.Repeat("감", 7)}, analysis)
	assert.InDelta(t, 0.55, short, 1e-9)

	// 200 characters (600 bytes) is neither short nor long.
	mid := calc.contentImportanceScore(domain.Message{Text: strings.Repeat("감", 200)}, analysis)
	assert.InDelta(t, 0.5, mid, 1e-9)

	long := calc.contentImportanceScore(domain.Message{Text: strings.Repeat("감", 501)}, analysis)
	assert.InDelta(t, 0.6, long, 1e-9)
}

func TestOutOfRangeUrgencyIsClamped(t *testing.T) {
	calc := newCalculator()
	msg := domain.Message{
		ChannelName:  "ops",
		Username:     "bot",
		Text:         "all good",
		Timestamp:    mondayMorning,
		ActivityType: domain.ActivityChannelMessage,
	}
	analysis := domain.Analysis{UrgencyScore: 3.7, WorkType: domain.WorkOther}

	score := calc.Calculate(msg, analysis, nil, mondayMorning)
	assert.LessOrEqual(t, score.TimeUrgencyScore, 1.0)
	assert.LessOrEqual(t, score.FinalScore, 1.0)
	assert.GreaterOrEqual(t, score.FinalScore, 0.0)
}

func TestActionTimeForHighDependsOnEstimate(t *testing.T) {
	long := suggestActionTime(domain.PriorityHigh, domain.Analysis{EstimatedMinutes: 45})
	short := suggestActionTime(domain.PriorityHigh, domain.Analysis{EstimatedMinutes: 15})
	assert.Equal(t, "today, needs focus block", long)
	assert.Equal(t, "today, within 1-2 hours", short)
	assert.Equal(t, "this week", suggestActionTime(domain.PriorityMedium, domain.Analysis{}))
}

func TestReasoningNamesDominantFactors(t *testing.T) {
	reasoning := buildReasoning(0.9, 0.65, 0.3, 0.2)
	assert.Contains(t, reasoning, "sender authority")
	assert.Contains(t, reasoning, "0.90")
	assert.Contains(t, reasoning, "time urgency")

	assert.Equal(t, "default priority", buildReasoning(0.5, 0.5, 0.5, 0.5))
}
