package booking

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const referencePrefix = "TW"

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReference builds a human-readable, collision-resistant booking
// reference: prefix + base36 millisecond timestamp + 6 random characters.
func NewReference(now time.Time) string {
	var sb strings.Builder
	sb.WriteString(referencePrefix)
	sb.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	sb.WriteString(randomSuffix(6))
	return sb.String()
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	// rand.Read never fails on supported platforms
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = referenceAlphabet[int(buf[i])%len(referenceAlphabet)]
	}
	return string(buf)
}
