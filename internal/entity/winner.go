package entity

import "time"

type WinnerLedgerEntry struct {
	Base

	Username     string    `json:"username" gorm:"index"`
	Address      string    `json:"address"`
	Topic        string    `json:"topic"`
	Score        int       `json:"score"`
	RewardAmount string    `json:"reward_amount"`
	RewardTx     string    `json:"reward_tx" gorm:"uniqueIndex"`
	Timestamp    time.Time `json:"timestamp"`
}
