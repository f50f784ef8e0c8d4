package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// GenerateOrderNumber builds a public order number in the form
// PREFIX-YYYYMMDD-XXXXXXXX where the suffix is 8 uppercase hex characters
// from a crypto-grade source. The format is shared with the payment gateway
// as the external reference, so it must stay stable.
func GenerateOrderNumber(prefix string, now time.Time) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("reading random suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%X", prefix, now.Format("20060102"), suffix), nil
}
