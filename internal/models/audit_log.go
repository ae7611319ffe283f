package models

import "time"

const (
	AuditEntityTransaction = "transaction"

	// AuditCreated is recorded when an entity is first written; status
	// changes are recorded under the policy action that allowed them.
	AuditCreated = "created"
)

// AuditLog is an append-only record of a marketplace event.
type AuditLog struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Action     string         `json:"action"`
	ActorID    *string        `json:"actorId,omitempty"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewAuditLog builds an entry. An empty actorID marks a system event.
func NewAuditLog(entityType, entityID, action, actorID string, details map[string]any) AuditLog {
	e := AuditLog{EntityType: entityType, EntityID: entityID, Action: action, Details: details}
	if actorID != "" {
		e.ActorID = &actorID
	}
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	return e
}
