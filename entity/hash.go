package entity

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainReaction is the domain prefix for reaction identity hashing.
// The version suffix enables future algorithm migration.
const DomainReaction = "retort/reaction/v1"

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeKey returns the NFC-normalized form of a raw identity key.
// Canonicalization collaborators that derive keys from text must normalize
// at this boundary so visually identical keys dedup to one entity.
func NormalizeKey(s string) string {
	return norm.NFC.String(s)
}
