package models

import (
	"time"

	"github.com/google/uuid"
)

// Device class constants
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

// KeywordTarget is a tracked search query within a project. The query string
// is stored normalized (trimmed, whitespace collapsed, lower-cased) so the
// same query cannot be tracked twice under cosmetic variations.
type KeywordTarget struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	Query     string    `json:"query"`
	Locale    string    `json:"locale"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"createdAt"`
}
