package enums

import "fmt"

// TrackStatus is the outcome of checking one wish during a tracking cycle.
type TrackStatus string

const (
	TrackStatusPriceDrop TrackStatus = "price_drop"
	TrackStatusNoChange  TrackStatus = "no_change"
	TrackStatusNotFound  TrackStatus = "not_found"
	TrackStatusError     TrackStatus = "error"
)

var validTrackStatuses = []TrackStatus{
	TrackStatusPriceDrop,
	TrackStatusNoChange,
	TrackStatusNotFound,
	TrackStatusError,
}

// String implements fmt.Stringer.
func (s TrackStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is a known value.
func (s TrackStatus) IsValid() bool {
	for _, candidate := range validTrackStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TrackStatuses returns every status, in declaration order.
func TrackStatuses() []TrackStatus {
	out := make([]TrackStatus, len(validTrackStatuses))
	copy(out, validTrackStatuses)
	return out
}

// ParseTrackStatus converts raw input into a TrackStatus.
func ParseTrackStatus(value string) (TrackStatus, error) {
	for _, candidate := range validTrackStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid track status %q", value)
}
