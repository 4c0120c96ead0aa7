package entity

import "time"

// Base is embedded by append-only records, they are never updated or
// deleted.
type Base struct {
	ID        string    `json:"-" gorm:"primarykey"`
	CreatedAt time.Time `json:"-"`
}
