package types

import "github.com/rxtech-lab/argo-scanner/pkg/errors"

// Frequency is the bar size a scan runs on.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency converts a string into a Frequency.
func ParseFrequency(value string) (Frequency, error) {
	switch Frequency(value) {
	case FrequencyDaily, "":
		return FrequencyDaily, nil
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency %q", value)
	}
}
