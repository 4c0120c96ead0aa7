package model

import "time"

type PostChallengeRequest struct {
	// Topic is picked randomly from the configured topics when empty.
	Topic string `json:"topic"`
	// Force abandons the open challenge, if any, before posting.
	Force bool `json:"force"`
}

type PostChallengeResponse struct {
	Topic        string    `json:"topic"`
	RootPostID   string    `json:"root_post_id"`
	RewardAmount string    `json:"reward_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type CheckRepliesRequest struct{}

type CheckRepliesResponse struct {
	Fetched    int  `json:"fetched"`
	Processed  int  `json:"processed"`
	Duplicated int  `json:"duplicated"`
	Skipped    int  `json:"skipped"`
	Completed  bool `json:"completed"`

	Winner *Winner `json:"winner,omitempty"`
}

type Winner struct {
	Username string `json:"username"`
	ReplyID  string `json:"reply_id"`
	Score    int    `json:"score"`
	Rewarded bool   `json:"rewarded"`
	Address  string `json:"address,omitempty"`
	Amount   string `json:"amount,omitempty"`
	TxHash   string `json:"tx_hash,omitempty"`
}

type RewardRequest struct {
	// Username selects the passing response to reward. The first passing
	// response is used when empty.
	Username string `json:"username"`
}

type RewardResponse struct {
	Winner          Winner `json:"winner"`
	AlreadyRewarded bool   `json:"already_rewarded"`
}

type GetStatusRequest struct{}

type GetStatusResponse struct {
	State        string    `json:"state"`
	Topic        string    `json:"topic,omitempty"`
	RootPostID   string    `json:"root_post_id,omitempty"`
	RewardAmount string    `json:"reward_amount,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	Responses    int       `json:"responses"`
	Passed       int       `json:"passed"`
	Abandoned    bool      `json:"abandoned,omitempty"`

	Winner *Winner `json:"winner,omitempty"`
}
