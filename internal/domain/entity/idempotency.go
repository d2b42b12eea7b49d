package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores processed print requests so a retried POS request
// does not print twice.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idem_client_key;size:255;not null"` // The idempotency key from client
	ClientID     string    `gorm:"uniqueIndex:idx_idem_client_key;size:100;not null"` // Terminal that made the request
	Endpoint     string    `gorm:"size:255;not null"`                                 // API endpoint (e.g., "POST /print/bill")
	RequestHash  string    `gorm:"size:64"`                                           // SHA256 hash of request body
	ResponseCode int       `gorm:"not null"`                                          // HTTP status code of original response
	ResponseBody string    `gorm:"type:text"`                                         // JSON response body (cached)
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"` // Keys expire after 24 hours
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
