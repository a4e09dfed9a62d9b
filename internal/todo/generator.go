// Package todo turns scored Slack messages into a ranked todo list.
package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leejaedus/project-morgan/internal/core/domain"
)

// ScoredMessage bundles the full pipeline output for one message.
type ScoredMessage struct {
	Message  domain.Message
	Analysis domain.Analysis
	Score    domain.PriorityScore
}

// Generator builds todo items and lists.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateItem builds a single todo from an analyzed, scored message.
func (g *Generator) GenerateItem(msg domain.Message, analysis domain.Analysis, score domain.PriorityScore) domain.TodoItem {
	return domain.TodoItem{
		ID:          uuid.NewString(),
		Message:     msg,
		Analysis:    analysis,
		Score:       score,
		Title:       buildTitle(msg, analysis),
		Description: buildDescription(msg, analysis, score),
		Tags:        buildTags(msg, analysis),
		CreatedAt:   time.Now(),
	}
}

// GenerateList builds a ranked list from scored messages. Only actionable
// messages become todos; items are sorted by final score descending.
func (g *Generator) GenerateList(scored []ScoredMessage, title string, hoursScanned int) domain.TodoList {
	var items []domain.TodoItem
	models := make(map[string]bool)

	for _, s := range scored {
		if !s.Analysis.ActionRequired {
			continue
		}
		items = append(items, g.GenerateItem(s.Message, s.Analysis, s.Score))
		models[s.Analysis.ModelUsed] = true
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score.FinalScore > items[j].Score.FinalScore
	})

	if title == "" {
		title = fmt.Sprintf("Smart todo list - %s", time.Now().Format("2006-01-02 15:04"))
	}

	modelsUsed := make([]string, 0, len(models))
	for m := range models {
		modelsUsed = append(modelsUsed, m)
	}
	sort.Strings(modelsUsed)

	return domain.TodoList{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  fmt.Sprintf("Generated from %d analyzed messages", len(scored)),
		Items:        items,
		TotalItems:   len(items),
		HoursScanned: hoursScanned,
		ModelsUsed:   modelsUsed,
		CreatedAt:    time.Now(),
	}
}

// buildTitle derives a short action title from common request patterns.
func buildTitle(msg domain.Message, analysis domain.Analysis) string {
	text := strings.ToLower(msg.Text)
	sender := msg.Username

	switch {
	case strings.Contains(msg.Text, "?"):
		return fmt.Sprintf("Answer %s's question", sender)
	case strings.Contains(text, "review"):
		return fmt.Sprintf("Review: requested by %s", sender)
	case strings.Contains(text, "meeting"):
		return fmt.Sprintf("Meeting: discuss with %s", sender)
	case strings.Contains(text, "approve"):
		return fmt.Sprintf("Approval: %s's request", sender)
	case analysis.WorkType == domain.WorkDecision:
		return fmt.Sprintf("Decision needed for %s", sender)
	case analysis.WorkType == domain.WorkSupport:
		return fmt.Sprintf("Support: help %s", sender)
	default:
		return fmt.Sprintf("Handle message from %s", sender)
	}
}

func buildDescription(msg domain.Message, analysis domain.Analysis, score domain.PriorityScore) string {
	preview := msg.Text
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💬 %q\n\n", preview)
	fmt.Fprintf(&b, "👤 From: %s\n", msg.Username)
	fmt.Fprintf(&b, "📍 Channel: #%s (%s)\n", msg.ChannelName, msg.ActivityType)
	fmt.Fprintf(&b, "⏰ Time: %s\n\n", msg.Timestamp.Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "🤖 AI analysis:\n")
	fmt.Fprintf(&b, "  - work type: %s\n", analysis.WorkType)
	fmt.Fprintf(&b, "  - complexity: %s\n", analysis.Complexity)
	fmt.Fprintf(&b, "  - estimated time: %d min\n", analysis.EstimatedMinutes)
	fmt.Fprintf(&b, "  - tone: %s\n", analysis.EmotionalTone)
	if len(analysis.DetectedKeywords) > 0 {
		fmt.Fprintf(&b, "  - keywords: %s\n", strings.Join(analysis.DetectedKeywords, ", "))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "🎯 Priority reasoning: %s\n", score.Reasoning)
	fmt.Fprintf(&b, "📅 Recommended: %s", score.RecommendedActionTime)
	return b.String()
}

func buildTags(msg domain.Message, analysis domain.Analysis) []string {
	tags := []string{
		"type:" + string(msg.ActivityType),
		"work:" + string(analysis.WorkType),
		"channel:" + msg.ChannelName,
	}

	if analysis.UrgencyScore > 0.8 {
		tags = append(tags, "urgent")
	} else if analysis.UrgencyScore > 0.6 {
		tags = append(tags, "important")
	}

	tags = append(tags, "complexity:"+analysis.Complexity)

	if analysis.EstimatedMinutes <= 15 {
		tags = append(tags, "quick")
	} else if analysis.EstimatedMinutes >= 60 {
		tags = append(tags, "deep-work")
	}
	return tags
}
