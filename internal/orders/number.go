package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderNumberSuffixLen = 4

var orderNumberAlphabet = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

// GenerateOrderNumber builds a human-readable unique order number from the
// configured prefix, a timestamp and a random suffix, e.g.
// LM-20260830153045-7KQ2.
func GenerateOrderNumber(prefix string, now time.Time) (string, error) {
	suffix := make([]rune, orderNumberSuffixLen)
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating order number suffix: %w", err)
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102150405"), string(suffix)), nil
}
