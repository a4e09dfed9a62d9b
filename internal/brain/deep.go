package brain

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

const defaultDeepModel = "gemini-2.5-flash"

// DeepAnalyzer is the expensive tier: contextual analysis on the larger
// model. When its provider call fails it downgrades to a live quick-tier
// call rather than its own heuristic, so a strong analysis is still
// attempted before degrading further.
type DeepAnalyzer struct {
	model     string
	generate  generateFunc
	downgrade ports.Analyzer
}

func NewDeepAnalyzer(client *genai.Client, model string, downgrade ports.Analyzer) *DeepAnalyzer {
	if model == "" {
		model = defaultDeepModel
	}
	return &DeepAnalyzer{
		model: model,
		generate: func(ctx context.Context, model, prompt string) (string, error) {
			return generateText(ctx, client, model, prompt)
		},
		downgrade: downgrade,
	}
}

var _ ports.Analyzer = (*DeepAnalyzer)(nil)

func (a *DeepAnalyzer) Tier() ports.Tier {
	return ports.TierDeep
}

func (a *DeepAnalyzer) Analyze(ctx context.Context, msg domain.Message) (domain.Analysis, error) {
	content, err := a.generate(ctx, a.model, deepPrompt(msg))
	if err != nil {
		return a.downgrade.Analyze(ctx, msg)
	}

	analysis, err := parseAnalysis(content, a.model, analysisDefaults{
		Complexity: "medium",
		Minutes:    20,
		Confidence: 0.8,
		Reasoning:  "Deep contextual analysis",
	}, time.Now())
	if err != nil {
		return a.downgrade.Analyze(ctx, msg)
	}
	return analysis, nil
}

func deepPrompt(msg domain.Message) string {
	return `You are an expert work communication analyst. Perform deep contextual analysis of this Slack message:

Message: "` + msg.Text + `"
From: ` + msg.Username + `
Channel: ` + msg.ChannelName + ` (` + string(msg.ActivityType) + `)
Timestamp: ` + msg.Timestamp.Format(time.RFC3339) + `
Mentions me directly: ` + boolString(msg.MentionsMe) + `
Message URL: ` + msg.Permalink + `

Context Analysis Required:
1. What is the real intent behind this message?
2. What level of urgency does this actually represent?
3. How much cognitive effort will responding require?
4. What type of work/collaboration is this?
5. What emotions or tone are conveyed?

Consider:
- Implicit vs explicit requests
- Cultural communication patterns
- Relationship dynamics (based on communication style)
- Time sensitivity indicators
- Complexity of required response

Provide detailed analysis as JSON:
{
    "action_required": boolean,
    "urgency_score": 0.0-1.0,
    "complexity": "simple|medium|complex",
    "work_type": "meeting|review|info|decision|support|other",
    "emotional_tone": "neutral|urgent|frustrated|encouraging|casual",
    "estimated_time_minutes": integer,
    "confidence": 0.0-1.0,
    "reasoning": "detailed explanation of analysis",
    "detected_keywords": ["important", "contextual", "keywords"]
}

Focus on practical prioritization for a busy professional.`
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
