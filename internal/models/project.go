package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is the tenant boundary. Every keyword target, snapshot, and derived
// result belongs to exactly one project, and API keys resolve to one project.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	APIKey      string    `json:"-"`
	NotifyEmail *string   `json:"notifyEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
