package brain

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

const defaultQuickModel = "gemini-2.5-flash-lite"

// fallbackModelName marks analyses produced without any provider call.
const fallbackModelName = "fallback-heuristic"

// actionIndicators flag a message as actionable in fallback mode.
var actionIndicators = []string{
	"?", "please", "can you", "could you", "review", "check", "confirm",
}

// fallbackUrgencyKeywords push fallback urgency to 0.9.
var fallbackUrgencyKeywords = []string{"urgent", "asap", "급함"}

// NewGenaiClient builds the shared genai client. The API key comes from the
// argument or GEMINI_API_KEY; a missing key is a fatal configuration error.
func NewGenaiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
}

// generateFunc produces raw model output for a prompt. It exists so tests
// can substitute the provider call.
type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// QuickAnalyzer is the cheap tier: fast classification on a lite model.
// When the provider fails it degrades to a deterministic local heuristic.
type QuickAnalyzer struct {
	model    string
	generate generateFunc
}

func NewQuickAnalyzer(client *genai.Client, model string) *QuickAnalyzer {
	if model == "" {
		model = defaultQuickModel
	}
	return &QuickAnalyzer{
		model: model,
		generate: func(ctx context.Context, model, prompt string) (string, error) {
			return generateText(ctx, client, model, prompt)
		},
	}
}

var _ ports.Analyzer = (*QuickAnalyzer)(nil)

func (a *QuickAnalyzer) Tier() ports.Tier {
	return ports.TierQuick
}

func (a *QuickAnalyzer) Analyze(ctx context.Context, msg domain.Message) (domain.Analysis, error) {
	content, err := a.generate(ctx, a.model, quickPrompt(msg))
	if err != nil {
		return a.Fallback(msg, err.Error()), nil
	}

	analysis, err := parseAnalysis(content, a.model, analysisDefaults{
		Complexity: "simple",
		Minutes:    10,
		Confidence: 0.7,
		Reasoning:  "Quick AI classification",
	}, time.Now())
	if err != nil {
		return a.Fallback(msg, err.Error()), nil
	}
	return analysis, nil
}

// Fallback builds a heuristic analysis without any external call. Same
// message text and flags always produce the same result.
func (a *QuickAnalyzer) Fallback(msg domain.Message, cause string) domain.Analysis {
	text := strings.ToLower(msg.Text)

	actionRequired := false
	for _, ind := range actionIndicators {
		if strings.Contains(text, ind) {
			actionRequired = true
			break
		}
	}

	urgency := 0.3
	if msg.MentionsMe {
		urgency = 0.7
	}
	for _, kw := range fallbackUrgencyKeywords {
		if strings.Contains(text, kw) {
			urgency = 0.9
			break
		}
	}

	return domain.Analysis{
		ActionRequired:   actionRequired,
		UrgencyScore:     urgency,
		Complexity:       "simple",
		WorkType:         domain.WorkOther,
		EmotionalTone:    "neutral",
		EstimatedMinutes: 15,
		Confidence:       0.3,
		Reasoning:        fmt.Sprintf("Fallback analysis due to %s", cause),
		ModelUsed:        fallbackModelName,
		AnalyzedAt:       time.Now(),
	}
}

// generateText runs one generation call and returns the first candidate text.
func generateText(ctx context.Context, client *genai.Client, model, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	}
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from %s", model)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func quickPrompt(msg domain.Message) string {
	return fmt.Sprintf(`Analyze this Slack message for work priority and action requirements:

Message: %q
From: %s
Channel: %s
Type: %s
Mentions me: %t

Provide analysis as JSON:
{
    "action_required": boolean,
    "urgency_score": 0.0-1.0,
    "complexity": "simple|medium|complex",
    "work_type": "meeting|review|info|decision|support|other",
    "emotional_tone": "neutral|urgent|frustrated|encouraging",
    "estimated_time_minutes": integer,
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation",
    "detected_keywords": ["key", "words"]
}`,
		msg.Text, msg.Username, msg.ChannelName, msg.ActivityType, msg.MentionsMe)
}
