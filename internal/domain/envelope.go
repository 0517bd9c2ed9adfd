package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Envelope wraps every upstream response body.
type Envelope[T any] struct {
	StatusMessage string `json:"status_message"`
	Data          T      `json:"data"`
}

// MessageData is the payload of every create endpoint.
type MessageData struct {
	Message string `json:"message"`
}

// Timestamp accepts the upstream's naive ISO datetimes (no zone) as well
// as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Date renders the day part, or "-" for a zero value.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
