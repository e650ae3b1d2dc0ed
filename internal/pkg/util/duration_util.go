package util

import (
	"errors"
	"time"

	"github.com/sosodev/duration"
)

var ErrNegativeDuration = errors.New("negative duration")

// ParseISODuration parses an ISO-8601 duration such as PT1H30M.
func ParseISODuration(raw string) (time.Duration, error) {
	d, err := duration.Parse(raw)
	if err != nil {
		return 0, err
	}
	if d.Negative {
		return 0, ErrNegativeDuration
	}
	return d.ToTimeDuration(), nil
}

// FormatISODuration renders d back in ISO-8601 form.
func FormatISODuration(d time.Duration) string {
	return duration.Format(d)
}

// SumISODurations returns cook + prep as an ISO-8601 duration. Nil inputs count
// as zero; when both are nil the total is nil too.
func SumISODurations(cook, prep *string) (*string, error) {
	if cook == nil && prep == nil {
		return nil, nil
	}
	var total time.Duration
	for _, raw := range []*string{cook, prep} {
		if raw == nil {
			continue
		}
		d, err := ParseISODuration(*raw)
		if err != nil {
			return nil, err
		}
		total += d
	}
	s := FormatISODuration(total)
	return &s, nil
}
