package utils

import (
	"fmt"
	"time"
)

const displayIDPrefix = "DH"

// DisplayID derives the customer facing order number from t:
// "DH" followed by the last 8 digits of its Unix millisecond clock.
func DisplayID(t time.Time) string {
	return fmt.Sprintf("%s%08d", displayIDPrefix, t.UnixMilli()%100_000_000)
}
