// Package snapshot detects concurrent external modification of the persisted
// dataset by fingerprinting its full structural content.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/titguild/guildboard/internal/modules/companies"
)

// SchemaVersion is baked into every token. Bumping it forces every session
// to see "diverged" exactly once after a deploy that changes the canonical
// serialization, instead of schema drift silently looking like (or hiding)
// an external edit.
const SchemaVersion = "v1"

// Token is a stable, order-sensitive content fingerprint of one dataset.
type Token string

// Fingerprint hashes the canonical JSON serialization of the dataset.
//
// The serialization is order-preserving: reordering companies or goods is a
// structural change and must flip the token. Struct-field order in the JSON
// is fixed by the model declarations, so identical content always yields
// identical bytes.
func Fingerprint(ds companies.Dataset) (Token, error) {
	if ds == nil {
		ds = companies.Dataset{}
	}

	payload, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("failed to serialize dataset for fingerprint: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(SchemaVersion + "|"))
	h.Write(payload)

	return Token(SchemaVersion + ":" + hex.EncodeToString(h.Sum(nil))), nil
}

// HasDiverged reports whether the persisted dataset changed behind this
// session's back. Pure equality negation; the detect-and-discard discipline
// around it belongs to the caller.
func HasDiverged(lastKnown, current Token) bool {
	return lastKnown != current
}
