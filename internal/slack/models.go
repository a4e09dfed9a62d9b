package slack

// apiResponse is the envelope every Slack Web API method returns.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type authTestResponse struct {
	apiResponse
	UserID string `json:"user_id"`
	User   string `json:"user"`
	Team   string `json:"team"`
	URL    string `json:"url"`
}

// apiChannel is a conversation as returned by conversations.list.
type apiChannel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsIM     bool   `json:"is_im"`
	IsMember bool   `json:"is_member"`
	User     string `json:"user"` // peer user id for IMs
}

type conversationsListResponse struct {
	apiResponse
	Channels []apiChannel `json:"channels"`
}

// apiMessage is a message as returned by conversations.history and
// conversations.replies.
type apiMessage struct {
	TS       string `json:"ts"`
	User     string `json:"user"`
	BotID    string `json:"bot_id"`
	Text     string `json:"text"`
	ThreadTS string `json:"thread_ts"`
}

type historyResponse struct {
	apiResponse
	Messages []apiMessage `json:"messages"`
}

// apiSearchMatch is a search.messages hit; unlike history messages it
// carries its channel inline.
type apiSearchMatch struct {
	TS      string `json:"ts"`
	User    string `json:"user"`
	Text    string `json:"text"`
	Channel struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"channel"`
	Permalink string `json:"permalink"`
}

type searchResponse struct {
	apiResponse
	Messages struct {
		Matches []apiSearchMatch `json:"matches"`
	} `json:"messages"`
}

type apiUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
}

type usersInfoResponse struct {
	apiResponse
	User apiUser `json:"user"`
}
