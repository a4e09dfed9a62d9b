// Package slack collects the user's recent Slack activity (mentions, DMs,
// thread replies, channel messages) through the Slack Web API.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

const DefaultBaseURL = "https://slack.com/api"

// Client talks to the Slack Web API and maps its payloads onto
// domain.Message records.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	log    *zap.Logger
	userID string

	mu        sync.Mutex
	userCache map[string]apiUser
}

func NewClient(token string, log *zap.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("SLACK_TOKEN is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		userCache:  make(map[string]apiUser),
	}, nil
}

var _ ports.Source = (*Client)(nil)

func (c *Client) Name() string {
	return "slack"
}

// Initialize authenticates and records the current user id. Bad credentials
// fail here, before any collection runs.
func (c *Client) Initialize(ctx context.Context) error {
	var res authTestResponse
	if err := c.call(ctx, "auth.test", nil, &res); err != nil {
		return fmt.Errorf("slack authentication failed: %w", err)
	}
	c.userID = res.UserID
	c.log.Info("authenticated with slack",
		zap.String("user_id", res.UserID), zap.String("team", res.Team))
	return nil
}

// CollectActivities gathers every activity type from the last N hours
// concurrently, then deduplicates on (message id, channel id).
func (c *Client) CollectActivities(ctx context.Context, hours int) ([]domain.Message, error) {
	if c.userID == "" {
		if err := c.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	oldest := time.Now().Add(-time.Duration(hours) * time.Hour)

	fetchers := []func(context.Context, time.Time) ([]domain.Message, error){
		c.fetchMentions,
		c.fetchDirectMessages,
		c.fetchThreadReplies,
		c.fetchChannelActivities,
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		all []domain.Message
	)
	for _, fetch := range fetchers {
		wg.Add(1)
		go func(fetch func(context.Context, time.Time) ([]domain.Message, error)) {
			defer wg.Done()
			msgs, err := fetch(ctx, oldest)
			if err != nil {
				c.log.Warn("activity fetch failed", zap.Error(err))
				return
			}
			mu.Lock()
			all = append(all, msgs...)
			mu.Unlock()
		}(fetch)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var unique []domain.Message
	for _, msg := range all {
		key := msg.ID + "/" + msg.ChannelID
		if !seen[key] {
			seen[key] = true
			unique = append(unique, msg)
		}
	}

	c.log.Info("collected slack activities",
		zap.Int("total", len(all)), zap.Int("unique", len(unique)))
	return unique, nil
}

// fetchMentions finds messages that mention the current user.
func (c *Client) fetchMentions(ctx context.Context, oldest time.Time) ([]domain.Message, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("<@%s>", c.userID))
	params.Set("count", "100")
	params.Set("sort", "timestamp")

	var res searchResponse
	if err := c.call(ctx, "search.messages", params, &res); err != nil {
		return nil, err
	}

	var msgs []domain.Message
	for _, m := range res.Messages.Matches {
		ts := parseTS(m.TS)
		if ts.Before(oldest) || m.User == c.userID {
			continue
		}
		msgs = append(msgs, domain.Message{
			ID:           m.TS,
			ChannelID:    m.Channel.ID,
			ChannelName:  m.Channel.Name,
			UserID:       m.User,
			Username:     c.username(ctx, m.User),
			Text:         m.Text,
			Timestamp:    ts,
			Permalink:    m.Permalink,
			ActivityType: domain.ActivityMention,
			MentionsMe:   true,
		})
	}
	return msgs, nil
}

// fetchDirectMessages pulls recent messages from IM conversations, skipping
// the user's own and bot messages.
func (c *Client) fetchDirectMessages(ctx context.Context, oldest time.Time) ([]domain.Message, error) {
	channels, err := c.listConversations(ctx, "im")
	if err != nil {
		return nil, err
	}

	var msgs []domain.Message
	for _, ch := range channels {
		history, err := c.history(ctx, ch.ID, oldest, 100)
		if err != nil {
			continue
		}
		for _, m := range history {
			if m.User == c.userID || m.BotID != "" {
				continue
			}
			msgs = append(msgs, c.toMessage(ctx, m, ch, domain.ActivityDM))
		}
	}
	return msgs, nil
}

// fetchThreadReplies finds replies in threads the user participated in.
func (c *Client) fetchThreadReplies(ctx context.Context, oldest time.Time) ([]domain.Message, error) {
	channels, err := c.listConversations(ctx, "public_channel,private_channel")
	if err != nil {
		return nil, err
	}

	var msgs []domain.Message
	for _, ch := range channels {
		history, err := c.history(ctx, ch.ID, oldest, 100)
		if err != nil {
			continue
		}
		for _, m := range history {
			if m.ThreadTS == "" || m.User == c.userID || m.BotID != "" {
				continue
			}
			if !c.userInThread(ctx, ch.ID, m.ThreadTS) {
				continue
			}
			msgs = append(msgs, c.toMessage(ctx, m, ch, domain.ActivityThreadReply))
		}
	}
	return msgs, nil
}

// fetchChannelActivities pulls plain channel messages, skipping mentions
// (already covered), own messages and bots.
func (c *Client) fetchChannelActivities(ctx context.Context, oldest time.Time) ([]domain.Message, error) {
	channels, err := c.listConversations(ctx, "public_channel,private_channel")
	if err != nil {
		return nil, err
	}

	mention := fmt.Sprintf("<@%s>", c.userID)
	var msgs []domain.Message
	for _, ch := range channels {
		history, err := c.history(ctx, ch.ID, oldest, 50)
		if err != nil {
			continue
		}
		for _, m := range history {
			if m.User == c.userID || m.BotID != "" || strings.Contains(m.Text, mention) {
				continue
			}
			msgs = append(msgs, c.toMessage(ctx, m, ch, domain.ActivityChannelMessage))
		}
	}
	return msgs, nil
}

func (c *Client) listConversations(ctx context.Context, types string) ([]apiChannel, error) {
	params := url.Values{}
	params.Set("types", types)
	params.Set("limit", "50")

	var res conversationsListResponse
	if err := c.call(ctx, "conversations.list", params, &res); err != nil {
		return nil, err
	}
	return res.Channels, nil
}

func (c *Client) history(ctx context.Context, channelID string, oldest time.Time, limit int) ([]apiMessage, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("oldest", fmt.Sprintf("%d.000000", oldest.Unix()))
	params.Set("limit", strconv.Itoa(limit))

	var res historyResponse
	if err := c.call(ctx, "conversations.history", params, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) userInThread(ctx context.Context, channelID, threadTS string) bool {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("ts", threadTS)

	var res historyResponse
	if err := c.call(ctx, "conversations.replies", params, &res); err != nil {
		return false
	}
	for _, reply := range res.Messages {
		if reply.User == c.userID {
			return true
		}
	}
	return false
}

func (c *Client) toMessage(ctx context.Context, m apiMessage, ch apiChannel, activity domain.ActivityType) domain.Message {
	channelName := ch.Name
	if ch.IsIM {
		channelName = "dm-" + c.username(ctx, ch.User)
	}
	ts := parseTS(m.TS)

	return domain.Message{
		ID:           m.TS,
		ChannelID:    ch.ID,
		ChannelName:  channelName,
		UserID:       m.User,
		Username:     c.username(ctx, m.User),
		Text:         m.Text,
		Timestamp:    ts,
		Permalink:    c.permalink(ch.ID, m.TS),
		ActivityType: activity,
		ThreadTS:     m.ThreadTS,
		IsBot:        m.BotID != "",
		MentionsMe:   strings.Contains(m.Text, fmt.Sprintf("<@%s>", c.userID)),
	}
}

// username resolves a user id through the users.info cache.
func (c *Client) username(ctx context.Context, userID string) string {
	if userID == "" {
		return "unknown"
	}

	c.mu.Lock()
	cached, ok := c.userCache[userID]
	c.mu.Unlock()
	if !ok {
		params := url.Values{}
		params.Set("user", userID)
		var res usersInfoResponse
		if err := c.call(ctx, "users.info", params, &res); err != nil {
			cached = apiUser{ID: userID, Name: "unknown"}
		} else {
			cached = res.User
		}
		c.mu.Lock()
		c.userCache[userID] = cached
		c.mu.Unlock()
	}

	if cached.RealName != "" {
		return cached.RealName
	}
	if cached.Name != "" {
		return cached.Name
	}
	return "unknown"
}

func (c *Client) permalink(channelID, ts string) string {
	return fmt.Sprintf("https://app.slack.com/archives/%s/p%s",
		channelID, strings.ReplaceAll(ts, ".", ""))
}

// call performs one Web API request with bearer auth and decodes the
// envelope, converting ok=false into an error.
func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	endpoint := c.BaseURL + "/" + method
	if params != nil {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status: %d", method, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}

	type okChecker interface{ ok() (bool, string) }
	if chk, isChecker := out.(okChecker); isChecker {
		if success, apiErr := chk.ok(); !success {
			return fmt.Errorf("%s failed: %s", method, apiErr)
		}
	}
	return nil
}

func (r apiResponse) ok() (bool, string) {
	return r.OK, r.Error
}

// parseTS converts a Slack "seconds.micros" timestamp string.
func parseTS(ts string) time.Time {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
