package history

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DomainEntry separates entry hashes from any other SHA-256 use.
const DomainEntry = "slashcmd/history/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TextHash returns the hash used to detect repeated input. Text is trimmed
// and NFC-normalized first, so visually identical input hashes the same.
func TextHash(text string) string {
	return hashWithDomain(DomainEntry, []byte(norm.NFC.String(strings.TrimSpace(text))))
}
