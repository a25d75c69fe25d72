package pathquery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainQuery is the domain prefix for content-addressed query identity.
// The version suffix enables future algorithm migration.
const DomainQuery = "pathmine/query/v1"

// Fingerprint computes the content-addressed identity of a query: SHA-256
// over its canonical JSON with a domain prefix and null separator, hex
// encoded. Equivalent queries fingerprint identically whatever the
// attribute order or whitespace of their source XML; any semantic change
// produces a different fingerprint.
func Fingerprint(q *Query) (string, error) {
	canonical, err := MarshalCanonical(q)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
