// Package brain runs AI analysis of Slack messages across two genai model
// tiers: a cheap quick classifier and a deeper contextual analyzer.
package brain

import (
	"strings"
	"unicode/utf8"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

// longMessageThreshold is the text length in characters above which a
// message is always routed to the deep tier.
const longMessageThreshold = 200

// defaultRoutingKeywords mark messages with likely higher stakes.
var defaultRoutingKeywords = []string{
	"project", "budget", "deadline", "meeting", "review",
	"approval", "decision", "strategy", "planning",
}

// Router decides which analysis tier a message should receive. It is a pure
// function of the message: no state, no I/O.
type Router struct {
	keywords []string
}

// NewRouter builds a router; a nil keyword list selects the defaults.
func NewRouter(keywords []string) *Router {
	if keywords == nil {
		keywords = defaultRoutingKeywords
	}
	return &Router{keywords: keywords}
}

// SelectTier routes a message. Deep analysis is reserved for long messages,
// stake-keyword matches, direct mentions and DMs; everything else takes the
// quick tier.
func (r *Router) SelectTier(msg domain.Message) ports.Tier {
	if utf8.RuneCountInString(msg.Text) > longMessageThreshold {
		return ports.TierDeep
	}

	text := strings.ToLower(msg.Text)
	for _, kw := range r.keywords {
		if strings.Contains(text, kw) {
			return ports.TierDeep
		}
	}

	if msg.MentionsMe {
		return ports.TierDeep
	}
	if msg.ActivityType == domain.ActivityDM {
		return ports.TierDeep
	}

	return ports.TierQuick
}
