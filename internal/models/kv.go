package models

import "time"

// KVPair is one row of the operational settings store.
type KVPair struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
