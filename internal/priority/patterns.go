package priority

import (
	"strings"

	"github.com/leejaedus/project-morgan/internal/core/domain"
)

// patternMatches reports whether a learned pattern applies to the given
// message/analysis pair. Sender, channel and keyword patterns match as
// case-insensitive substrings; work_type matches exactly; time patterns
// match fixed buckets (morning 06-12, afternoon 12-18, evening 18-22).
func patternMatches(p domain.LearnedPattern, msg domain.Message, analysis domain.Analysis) bool {
	value := strings.ToLower(p.Value)

	switch p.Type {
	case "sender":
		return strings.Contains(strings.ToLower(msg.Username), value)
	case "channel":
		return strings.Contains(strings.ToLower(msg.ChannelName), value)
	case "keyword":
		return strings.Contains(strings.ToLower(msg.Text), value)
	case "work_type":
		return value == string(analysis.WorkType)
	case "time":
		hour := msg.Timestamp.Hour()
		switch value {
		case "morning":
			return hour >= 6 && hour < 12
		case "afternoon":
			return hour >= 12 && hour < 18
		case "evening":
			return hour >= 18 && hour < 22
		}
	}

	return false
}
