// Package priority turns an analyzed Slack message into a single ranked
// priority score built from four weighted sub-scores.
package priority

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leejaedus/project-morgan/internal/core/domain"
)

// Base weights before context adjustment. The adjusted weights are always
// renormalized to sum to 1.0.
const (
	weightSenderAuthority   = 0.3
	weightTimeUrgency       = 0.2
	weightContentImportance = 0.3
	weightPersonalPatterns  = 0.2
)

// Calculator computes priority scores. It holds configuration only; every
// Calculate call is deterministic given identical inputs and now.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate produces the priority score for one message. The caller supplies
// now so time-based factors stay reproducible under test.
func (c *Calculator) Calculate(msg domain.Message, analysis domain.Analysis,
	patterns []domain.LearnedPattern, now time.Time) domain.PriorityScore {

	senderScore := c.senderAuthorityScore(msg)
	timeScore := c.timeUrgencyScore(msg, analysis, now)
	contentScore := c.contentImportanceScore(msg, analysis)
	personalScore := c.personalWeightScore(msg, analysis, patterns)

	weights := adjustedWeights(msg)
	finalScore := clamp01(
		senderScore*weights.senderAuthority +
			timeScore*weights.timeUrgency +
			contentScore*weights.contentImportance +
			personalScore*weights.personalPatterns)

	level := scoreToPriority(finalScore)

	return domain.PriorityScore{
		FinalScore:             finalScore,
		Level:                  level,
		SenderAuthorityScore:   senderScore,
		TimeUrgencyScore:       timeScore,
		ContentImportanceScore: contentScore,
		PersonalWeightScore:    personalScore,
		RecommendedActionTime:  suggestActionTime(level, analysis),
		Reasoning:              buildReasoning(senderScore, timeScore, contentScore, personalScore),
		CalculatedAt:           now,
	}
}

// senderAuthorityScore estimates how much the sender and delivery channel
// demand attention.
func (c *Calculator) senderAuthorityScore(msg domain.Message) float64 {
	score := 0.5

	switch msg.ActivityType {
	case domain.ActivityMention:
		score += 0.3
	case domain.ActivityDM:
		score += 0.2
	case domain.ActivityThreadReply:
		score += 0.1
	}

	channel := strings.ToLower(msg.ChannelName)
	switch {
	case containsAny(channel, c.cfg.Keywords.ExecutiveChannels):
		score += 0.3
	case containsAny(channel, c.cfg.Keywords.UrgentChannels):
		score += 0.25
	case containsAny(channel, c.cfg.Keywords.CasualChannels):
		score -= 0.1
	}

	// Off-hours messages tend to carry more weight.
	hour := msg.Timestamp.Hour()
	if hour < c.cfg.WorkingHours.Start || hour > c.cfg.WorkingHours.End {
		score += 0.1
	}

	return clamp01(score)
}

func (c *Calculator) timeUrgencyScore(msg domain.Message, analysis domain.Analysis, now time.Time) float64 {
	score := clamp01(analysis.UrgencyScore)

	ageHours := now.Sub(msg.Timestamp).Hours()
	if ageHours < 1 {
		score += 0.2
	} else if ageHours > 24 {
		score -= 0.2
	}

	switch msg.Timestamp.Weekday() {
	case time.Saturday, time.Sunday:
		score -= 0.1
	case time.Monday:
		score += 0.1
	}

	hour := msg.Timestamp.Hour()
	if hour >= 9 && hour <= 17 {
		score += 0.1
	} else if hour >= 22 || hour <= 6 {
		// Unusual timing suggests urgency.
		score += 0.2
	}

	return clamp01(score)
}

func (c *Calculator) contentImportanceScore(msg domain.Message, analysis domain.Analysis) float64 {
	score := 0.5

	if analysis.ActionRequired {
		score += 0.3
	}

	switch analysis.WorkType {
	case domain.WorkDecision, domain.WorkMeeting, domain.WorkReview:
		score += 0.2
	case domain.WorkInfo, domain.WorkSupport:
		score += 0.1
	}

	switch analysis.Complexity {
	case "complex":
		score += 0.15
	case "simple":
		score -= 0.05
	}

	switch analysis.EmotionalTone {
	case "urgent":
		score += 0.2
	case "frustrated":
		score += 0.15
	case "encouraging":
		score += 0.05
	}

	length := utf8.RuneCountInString(msg.Text)
	if length > 500 {
		score += 0.1
	} else if length < 20 {
		score += 0.05
	}

	text := strings.ToLower(msg.Text)
	matches := 0
	for _, kw := range c.cfg.Keywords.HighPriority {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	score += min(0.2, float64(matches)*0.05)

	return clamp01(score)
}

// personalWeightScore applies every matching learned pattern cumulatively;
// only the final sum is clamped.
func (c *Calculator) personalWeightScore(msg domain.Message, analysis domain.Analysis,
	patterns []domain.LearnedPattern) float64 {

	score := 0.5
	for _, p := range patterns {
		if patternMatches(p, msg, analysis) {
			score += p.WeightAdjustment * p.Confidence
		}
	}
	return clamp01(score)
}

type factorWeights struct {
	senderAuthority   float64
	timeUrgency       float64
	contentImportance float64
	personalPatterns  float64
}

// adjustedWeights shifts the base weights for the message context and
// renormalizes them to sum to exactly 1.0.
func adjustedWeights(msg domain.Message) factorWeights {
	w := factorWeights{
		senderAuthority:   weightSenderAuthority,
		timeUrgency:       weightTimeUrgency,
		contentImportance: weightContentImportance,
		personalPatterns:  weightPersonalPatterns,
	}

	switch msg.ActivityType {
	case domain.ActivityDM:
		w.senderAuthority += 0.1
		w.timeUrgency += 0.05
	case domain.ActivityMention:
		w.contentImportance += 0.1
	case domain.ActivityChannelMessage:
		w.personalPatterns += 0.1
	}

	total := w.senderAuthority + w.timeUrgency + w.contentImportance + w.personalPatterns
	w.senderAuthority /= total
	w.timeUrgency /= total
	w.contentImportance /= total
	w.personalPatterns /= total
	return w
}

// scoreToPriority buckets a final score; boundaries are inclusive on the
// lower bound.
func scoreToPriority(score float64) domain.Priority {
	switch {
	case score >= 0.8:
		return domain.PriorityUrgent
	case score >= 0.6:
		return domain.PriorityHigh
	case score >= 0.4:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func suggestActionTime(level domain.Priority, analysis domain.Analysis) string {
	switch level {
	case domain.PriorityUrgent:
		return "within 30 minutes"
	case domain.PriorityHigh:
		if analysis.EstimatedMinutes > 30 {
			return "today, needs focus block"
		}
		return "today, within 1-2 hours"
	case domain.PriorityMedium:
		return "this week"
	default:
		return "whenever convenient"
	}
}

// buildReasoning names the dominant sub-scores: the top factor when it
// exceeds 0.7, the runner-up when it exceeds 0.6.
func buildReasoning(senderScore, timeScore, contentScore, personalScore float64) string {
	type factor struct {
		name  string
		score float64
	}
	factors := []factor{
		{"sender authority", senderScore},
		{"time urgency", timeScore},
		{"content importance", contentScore},
		{"personal patterns", personalScore},
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].score > factors[j].score
	})

	var reasons []string
	if factors[0].score > 0.7 {
		reasons = append(reasons, fmt.Sprintf("%s is high (%.2f)", factors[0].name, factors[0].score))
	}
	if factors[1].score > 0.6 {
		reasons = append(reasons, fmt.Sprintf("%s also weighed in (%.2f)", factors[1].name, factors[1].score))
	}
	if len(reasons) == 0 {
		return "default priority"
	}
	return strings.Join(reasons, " | ")
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
