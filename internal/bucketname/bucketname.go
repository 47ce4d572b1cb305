// internal/bucketname/bucketname.go
//
// Deterministic bucket-name derivation.
//
// • Derive(title, ownerID) ─ strips every non-alphanumeric rune from the
//   title, lower-cases the remainder, and appends “-<ownerID>”.
//
// Rules (Derive)
// --------------
// 1. Lower-case everything.
// 2. Drop any rune outside [a-z0-9].  Spaces, punctuation, emoji, and
//    non-ASCII disappear entirely; nothing is replaced by a dash.
// 3. Join the normalised title and the owner id with a single “-”.
//
// The result is the site's bucket name, which must be globally unique in the
// object-store namespace.  Uniqueness follows from the owner id suffix plus
// the registry's duplicate check before creation.
//
// Notes
// -----
// • “Acme Co” + “u1” → “acmeco-u1”.
// • An all-symbol title normalises to the bare “-<ownerID>”; the store will
//   reject it, which is the desired fail-fast for junk titles.
package bucketname

import "strings"

// Derive returns the canonical bucket name for a site title and its owner.
func Derive(title, ownerID string) string {
	var b strings.Builder
	b.Grow(len(title) + len(ownerID) + 1)

	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	b.WriteByte('-')
	b.WriteString(strings.ToLower(ownerID))
	return b.String()
}
