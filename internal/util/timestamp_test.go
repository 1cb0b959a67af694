package util

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{name: "rfc3339 utc", input: "2026-03-04T05:06:07Z", expected: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)},
		{name: "rfc3339 offset", input: "2026-03-04T08:06:07+03:00", expected: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)},
		{name: "fractional seconds", input: "2026-03-04T05:06:07.250Z", expected: time.Date(2026, 3, 4, 5, 6, 7, 250_000_000, time.UTC)},
		{name: "naive date-time", input: "2026-03-04T05:06:07", expected: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)},
		{name: "naive minutes", input: "2026-03-04T05:06", expected: time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)},
		{name: "date only", input: "2026-03-04", expected: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", input: " 2026-03-04 ", expected: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.expected) || got.Location() != time.UTC {
				t.Fatalf("ParseTimestamp(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTimestampRejects(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "tomorrow", "2026-13-01", "04/03/2026"} {
		if _, err := ParseTimestamp(input); !errors.Is(err, ErrInvalidTimestamp) {
			t.Fatalf("ParseTimestamp(%q) error = %v, want ErrInvalidTimestamp", input, err)
		}
	}
}

func TestTimestampJSON(t *testing.T) {
	t.Parallel()

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2026-03-04"`), &ts); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	out, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `"2026-03-04T00:00:00Z"` {
		t.Fatalf("Marshal() = %s", out)
	}

	if err := json.Unmarshal([]byte(`12`), &ts); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("Unmarshal(12) error = %v, want ErrInvalidTimestamp", err)
	}
}
