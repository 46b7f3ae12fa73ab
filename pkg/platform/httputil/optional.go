package httputil

import (
	"bytes"
	"encoding/json"
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

// OptionalTime distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
// Both RFC 3339 timestamps and plain dates (midnight UTC) are accepted.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return dErrors.New(dErrors.CodeValidation, "timestamp must be a string")
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// ParseTimestamp accepts RFC 3339 or YYYY-MM-DD and returns UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC(), nil
	}
	return id.ParseDate(raw)
}
