package entity

import (
	"time"

	"github.com/questx-lab/persuade-agent/pkg/enum"
)

type ChallengeState string

var (
	ChallengeStateNoActive  = enum.New(ChallengeState("no_active_challenge"))
	ChallengeStateOpen      = enum.New(ChallengeState("open"))
	ChallengeStateCompleted = enum.New(ChallengeState("completed"))
)

type Challenge struct {
	Topic        string    `json:"topic"`
	CreatedAt    time.Time `json:"created_at"`
	RewardAmount string    `json:"reward_amount"`

	// RootPostID is the id of the post announcing the challenge. It is set
	// once after posting and never changes.
	RootPostID string `json:"root_post_id,omitempty"`

	// FallbackAddress receives the reward when the winner's address cannot
	// be resolved.
	FallbackAddress string `json:"fallback_address,omitempty"`

	Responses []*Response `json:"responses"`

	Completed bool   `json:"completed"`
	Winner    string `json:"winner,omitempty"`
	Abandoned bool   `json:"abandoned,omitempty"`
}

func (c *Challenge) State() ChallengeState {
	if c == nil {
		return ChallengeStateNoActive
	}

	if c.Completed {
		return ChallengeStateCompleted
	}

	return ChallengeStateOpen
}

func (c *Challenge) HasReply(replyID string) bool {
	return c.ResponseByReplyID(replyID) != nil
}

func (c *Challenge) ResponseByReplyID(replyID string) *Response {
	for _, r := range c.Responses {
		if r.ReplyID == replyID {
			return r
		}
	}

	return nil
}

func (c *Challenge) PassedCount() int {
	count := 0
	for _, r := range c.Responses {
		if r.Evaluation.Passed {
			count++
		}
	}

	return count
}

type Response struct {
	Username        string `json:"username"`
	DisplayName     string `json:"display_name,omitempty"`
	FID             int64  `json:"fid,omitempty"`
	ResolvedAddress string `json:"resolved_address,omitempty"`

	ReplyID    string     `json:"reply_id"`
	ReplyText  string     `json:"reply_text"`
	Evaluation Evaluation `json:"evaluation"`
	Timestamp  time.Time  `json:"timestamp"`

	Rewarded        bool       `json:"rewarded,omitempty"`
	RewardAmount    string     `json:"reward_amount,omitempty"`
	RewardTx        string     `json:"reward_tx,omitempty"`
	RewardTimestamp *time.Time `json:"reward_timestamp,omitempty"`
}

// MentionName is the name used when addressing the author in a post.
func (r *Response) MentionName() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}

	return r.Username
}

type Evaluation struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
	Passed    bool   `json:"passed"`
}
