package models

import "time"

// Option is a single row of the store-wide key-value settings table.
type Option struct {
	Key       string    `json:"key" gorm:"primaryKey;column:option_key"`
	Value     string    `json:"value" gorm:"column:option_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Option) TableName() string {
	return "options"
}
