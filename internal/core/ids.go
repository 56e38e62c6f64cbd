package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// NewTransactionID returns a random opaque id.
func NewTransactionID() string {
	return uuid.NewString()
}

// GenerateKey derives a stable key for a category or bank from its label:
// the lower-cased label with whitespace runs replaced by underscores and a
// millisecond suffix. taken is consulted so the key is unique in its set.
func GenerateKey(label string, now time.Time, taken func(string) bool) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ErrEmptyLabel
	}
	base := strings.Join(strings.Fields(lower.String(label)), "_") + "_" + strconv.FormatInt(now.UnixMilli(), 10)
	key := base
	for n := 2; taken != nil && taken(key); n++ {
		key = base + "_" + strconv.Itoa(n)
	}
	return key, nil
}
