package models

import "time"

// KVState is the gateway's durable key/value row. Cart payloads and pending
// order ids are stored as opaque strings under namespaced keys, mirroring the
// Redis layout so either store can back the cart service.
type KVState struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Payload   string    `gorm:"type:text" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable across drivers.
func (KVState) TableName() string {
	return "kv_states"
}
