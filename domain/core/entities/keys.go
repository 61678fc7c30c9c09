package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// naturalKey hashes the identifying parts of a document. Two documents with
// the same natural key are duplicates.
func naturalKey(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "\x1f")))
	return hex.EncodeToString(sum[:16])
}

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func toggle(list []string, v string, present bool) []string {
	out := list[:0:0]
	for _, existing := range list {
		if existing != v {
			out = append(out, existing)
		}
	}
	if present {
		out = append(out, v)
	}
	return out
}
