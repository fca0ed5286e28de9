// Package frontmatterops applies catalog conventions to document
// frontmatter: stable uids, uid aliases, and content fingerprints with
// lastmod tracking.
package frontmatterops

import (
	"errors"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/frontmatter"
)

const (
	// LastmodField records the date of the last content change.
	LastmodField = "lastmod"
	// UIDField is the stable document identity.
	UIDField = "uid"
	// AliasesField lists extra URLs that redirect to the document.
	AliasesField = "aliases"
)

// ComputeFingerprint hashes the document content.
//
// Canonicalization before hashing:
//   - fingerprint, lastmod, uid, and aliases are excluded, so identity and
//     bookkeeping churn never change the hash
//   - remaining fields serialize with sorted keys and LF newlines
//   - a single trailing newline is trimmed from the serialized block
func ComputeFingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case mdfp.FingerprintField, LastmodField, UIDField, AliasesField:
			continue
		}
		hashed[k] = v
	}

	block := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.Serialize(hashed, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		block = trimSingleTrailingNewline(string(serialized))
	}

	return mdfp.CalculateFingerprintFromParts(block, string(body)), nil
}

// RefreshFingerprint recomputes the fingerprint and upserts it into fields.
// When the fingerprint actually moved, lastmod advances to now as a UTC
// YYYY-MM-DD date.
func RefreshFingerprint(fields map[string]any, body []byte, now time.Time) (fingerprint string, changed bool, err error) {
	if fields == nil {
		return "", false, errors.New("fields map is nil")
	}

	previous, _ := fields[mdfp.FingerprintField].(string)

	fingerprint, err = ComputeFingerprint(fields, body)
	if err != nil {
		return "", false, err
	}

	if previous != fingerprint {
		fields[mdfp.FingerprintField] = fingerprint
		changed = true
	}
	if fingerprint != "" && strings.TrimSpace(previous) != strings.TrimSpace(fingerprint) {
		fields[LastmodField] = now.UTC().Format("2006-01-02")
		changed = true
	}

	return fingerprint, changed, nil
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\r\n"); ok {
		return before
	}
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}
