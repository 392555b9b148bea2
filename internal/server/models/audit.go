package models

import (
	"encoding/json"
	"time"
)

// AuditAction classifies a request by its HTTP method.
type AuditAction string

const (
	ActionRead    AuditAction = "READ"
	ActionCreate  AuditAction = "CREATE"
	ActionUpdate  AuditAction = "UPDATE"
	ActionDelete  AuditAction = "DELETE"
	ActionUnknown AuditAction = "UNKNOWN"
)

// AuditEntry is an immutable record of one authenticated request.
type AuditEntry struct {
	ID           int64           `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	ActorID      string          `json:"actor_id"`
	Action       AuditAction     `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	IPAddress    string          `json:"ip_address"`
	UserAgent    string          `json:"user_agent"`
	Success      bool            `json:"success"`
	Details      json.RawMessage `json:"details"`
}

// AuditFilter narrows an audit query. Zero fields do not filter.
type AuditFilter struct {
	ActorID      string
	Action       AuditAction
	ResourceType string
	From         time.Time
	To           time.Time
	Limit        int
}
