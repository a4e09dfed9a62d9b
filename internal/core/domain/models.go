package domain

import "time"

// Priority is the bucketed priority level of a todo item.
type Priority string

const (
	PriorityUrgent Priority = "urgent" // handle within 30 minutes
	PriorityHigh   Priority = "high"   // handle today
	PriorityMedium Priority = "medium" // handle this week
	PriorityLow    Priority = "low"    // whenever convenient
)

// ActivityType classifies how a Slack message reached the user.
type ActivityType string

const (
	ActivityMention        ActivityType = "mention"
	ActivityDM             ActivityType = "dm"
	ActivityThreadReply    ActivityType = "thread_reply"
	ActivityChannelMessage ActivityType = "channel"
)

// WorkType is the kind of work a message asks for.
type WorkType string

const (
	WorkMeeting  WorkType = "meeting"
	WorkReview   WorkType = "review"
	WorkInfo     WorkType = "info"
	WorkDecision WorkType = "decision"
	WorkSupport  WorkType = "support"
	WorkOther    WorkType = "other"
)

// ParseWorkType maps a provider string to a WorkType, failing closed to
// WorkOther for anything it does not recognize.
func ParseWorkType(s string) WorkType {
	switch WorkType(s) {
	case WorkMeeting, WorkReview, WorkInfo, WorkDecision, WorkSupport:
		return WorkType(s)
	default:
		return WorkOther
	}
}

// Message is a normalized Slack message. It is assembled once at ingestion;
// ActivityType and MentionsMe are never recomputed downstream.
type Message struct {
	ID          string
	ChannelID   string
	ChannelName string
	UserID      string
	Username    string
	Text        string
	Timestamp   time.Time
	Permalink   string

	ActivityType ActivityType
	ThreadTS     string
	IsBot        bool
	MentionsMe   bool
}

// Analysis is the normalized output of an analysis tier.
type Analysis struct {
	ActionRequired bool
	UrgencyScore   float64 // 0..1, clamped on parse
	Complexity     string  // simple|medium|complex
	WorkType       WorkType
	EmotionalTone  string // neutral|urgent|frustrated|encouraging|casual

	EstimatedMinutes int

	Confidence       float64 // 0..1, clamped on parse
	Reasoning        string
	DetectedKeywords []string

	ModelUsed  string
	AnalyzedAt time.Time
}

// LearnedPattern is a learned user-behavior rule that nudges the personal
// weight sub-score. The calculator only reads these, it never mutates them.
type LearnedPattern struct {
	Type             string // sender|channel|keyword|work_type|time
	Value            string
	WeightAdjustment float64
	Confidence       float64 // 0..1
	UsageCount       int

	LastUpdated time.Time
	CreatedAt   time.Time
}

// PriorityScore is the calculator's terminal output for one message.
// Level is always derived from FinalScore, never set independently.
type PriorityScore struct {
	FinalScore float64
	Level      Priority

	SenderAuthorityScore   float64
	TimeUrgencyScore       float64
	ContentImportanceScore float64
	PersonalWeightScore    float64

	RecommendedActionTime string
	Reasoning             string

	CalculatedAt time.Time
}

// TodoItem is a todo generated from an analyzed Slack message.
type TodoItem struct {
	ID string

	Message  Message
	Analysis Analysis
	Score    PriorityScore

	Title       string
	Description string
	Tags        []string

	Completed   bool
	CompletedAt time.Time

	CreatedAt time.Time
}

// Priority returns the derived priority level of the item.
func (t TodoItem) Priority() Priority {
	return t.Score.Level
}

// TodoList is a ranked collection of todo items.
type TodoList struct {
	ID          string
	Title       string
	Description string

	Items []TodoItem

	TotalItems     int
	CompletedItems int

	HoursScanned int
	ModelsUsed   []string

	CreatedAt time.Time
}

// ByPriority returns the items at the given level, keeping rank order.
func (l TodoList) ByPriority(p Priority) []TodoItem {
	var out []TodoItem
	for _, item := range l.Items {
		if item.Priority() == p {
			out = append(out, item)
		}
	}
	return out
}

// Feedback captures the user's reaction to a generated todo. It is stored
// as raw material for a future learning pass; nothing consumes it yet.
type Feedback struct {
	TodoID            string
	PredictedPriority Priority
	ActualPriority    Priority // empty when the user did not override
	Satisfaction      int      // 1..5
	Comment           string
	CreatedAt         time.Time
}
