package brain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

func TestSelectTier(t *testing.T) {
	router := NewRouter(nil)

	cases := []struct {
		name string
		msg  domain.Message
		want ports.Tier
	}{
		{
			"short chatter stays cheap",
			domain.Message{Text: "thanks!", ActivityType: domain.ActivityChannelMessage},
			ports.TierQuick,
		},
		{
			"long message goes deep",
			domain.Message{Text: strings.Repeat("a", 250), ActivityType: domain.ActivityChannelMessage},
			ports.TierDeep,
		},
		{
			"exactly 200 chars stays cheap",
			domain.Message{Text: strings.Repeat("a", 200), ActivityType: domain.ActivityChannelMessage},
			ports.TierQuick,
		},
		{
			"200 korean chars stays cheap despite multibyte encoding",
			domain.Message{Text: strings.Repeat("확", 200), ActivityType: domain.ActivityChannelMessage},
			ports.TierQuick,
		},
		{
			"201 korean chars goes deep",
			domain.Message{Text: strings.Repeat("확", 201), ActivityType: domain.ActivityChannelMessage},
			ports.TierDeep,
		},
		{
			"stake keyword goes deep",
			domain.Message{Text: "the Budget looks off", ActivityType: domain.ActivityChannelMessage},
			ports.TierDeep,
		},
		{
			"mention goes deep",
			domain.Message{Text: "hey", MentionsMe: true, ActivityType: domain.ActivityChannelMessage},
			ports.TierDeep,
		},
		{
			"dm goes deep",
			domain.Message{Text: "hey", ActivityType: domain.ActivityDM},
			ports.TierDeep,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, router.SelectTier(tc.msg))
		})
	}
}

func TestSelectTierIsReferentiallyTransparent(t *testing.T) {
	router := NewRouter(nil)
	msg := domain.Message{Text: "can we sync on the project plan?", ActivityType: domain.ActivityChannelMessage}
	first := router.SelectTier(msg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, router.SelectTier(msg))
	}
}
