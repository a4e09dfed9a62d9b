package brain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/leejaedus/project-morgan/internal/core/domain"
)

// rawAnalysis mirrors the JSON object the models are asked to produce.
// Pointer fields distinguish "missing" from zero so defaults can apply.
type rawAnalysis struct {
	ActionRequired       *bool    `json:"action_required"`
	UrgencyScore         *float64 `json:"urgency_score"`
	Complexity           string   `json:"complexity"`
	WorkType             string   `json:"work_type"`
	EmotionalTone        string   `json:"emotional_tone"`
	EstimatedTimeMinutes *int     `json:"estimated_time_minutes"`
	Confidence           *float64 `json:"confidence"`
	Reasoning            string   `json:"reasoning"`
	DetectedKeywords     []string `json:"detected_keywords"`
}

// analysisDefaults are the per-tier values used for missing fields.
type analysisDefaults struct {
	Complexity string
	Minutes    int
	Confidence float64
	Reasoning  string
}

// cleanJSON strips markdown code fences and trims to the outermost JSON
// object, which the models occasionally wrap around their output.
func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	input = strings.TrimSpace(input)

	if start := strings.Index(input, "{"); start != -1 {
		if end := strings.LastIndex(input, "}"); end != -1 && end > start {
			input = input[start : end+1]
		}
	}
	return input
}

// parseAnalysis decodes a model response into a domain.Analysis, applying
// tier defaults for missing fields and clamping numeric ranges. Unknown
// work types fail closed to "other".
func parseAnalysis(content, model string, defaults analysisDefaults, now time.Time) (domain.Analysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(content)), &raw); err != nil {
		return domain.Analysis{}, fmt.Errorf("unparsable analysis response: %w", err)
	}

	analysis := domain.Analysis{
		UrgencyScore:     0.5,
		Complexity:       defaults.Complexity,
		WorkType:         domain.ParseWorkType(raw.WorkType),
		EmotionalTone:    "neutral",
		EstimatedMinutes: defaults.Minutes,
		Confidence:       defaults.Confidence,
		Reasoning:        defaults.Reasoning,
		DetectedKeywords: raw.DetectedKeywords,
		ModelUsed:        model,
		AnalyzedAt:       now,
	}

	if raw.ActionRequired != nil {
		analysis.ActionRequired = *raw.ActionRequired
	}
	if raw.UrgencyScore != nil {
		analysis.UrgencyScore = clamp01(*raw.UrgencyScore)
	}
	if raw.Complexity != "" {
		analysis.Complexity = raw.Complexity
	}
	if raw.EmotionalTone != "" {
		analysis.EmotionalTone = raw.EmotionalTone
	}
	if raw.EstimatedTimeMinutes != nil && *raw.EstimatedTimeMinutes >= 0 {
		analysis.EstimatedMinutes = *raw.EstimatedTimeMinutes
	}
	if raw.Confidence != nil {
		analysis.Confidence = clamp01(*raw.Confidence)
	}
	if raw.Reasoning != "" {
		analysis.Reasoning = raw.Reasoning
	}

	return analysis, nil
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
