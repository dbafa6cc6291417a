package types

import (
	"time"

	"github.com/google/uuid"
)

// RecordID identifies a stored record (UUIDv7).
type RecordID string

// RuleSetID identifies a stored rule set (UUIDv7).
type RuleSetID string

// SchemaID identifies a stored column descriptor set (UUIDv7).
type SchemaID string

// TemplateID identifies a stored template (UUIDv7).
type TemplateID string

// NewRecordID generates a UUIDv7 record identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRecordID() RecordID {
	return RecordID(newID())
}

// NewRuleSetID generates a UUIDv7 rule set identifier.
func NewRuleSetID() RuleSetID {
	return RuleSetID(newID())
}

// NewSchemaID generates a UUIDv7 schema identifier.
func NewSchemaID() SchemaID {
	return SchemaID(newID())
}

// NewTemplateID generates a UUIDv7 template identifier.
func NewTemplateID() TemplateID {
	return TemplateID(newID())
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ParseRecordID validates and converts a string to RecordID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseRecordID(s string) (RecordID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RecordID(s), nil
}

// RecordIDTime extracts the timestamp embedded in a UUIDv7 record ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RecordIDTime(id RecordID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
