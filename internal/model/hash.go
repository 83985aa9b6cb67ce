package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content hashes. The version suffix allows the
// serialization to change without colliding with older hashes.
const (
	DomainChange = "procdesign/change/v1"
	DomainCalc   = "procdesign/calc/v1"
)

// CanonicalJSON serializes v as RFC 8785 JSON with NFC-normalized text.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}
	return norm.NFC.Bytes(out), nil
}

// ContentHash returns SHA-256(domain || 0x00 || canonical(v)) as hex.
func ContentHash(domain string, v any) (string, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return hashWithDomain(domain, data), nil
}

// ChangeHash identifies one entity change: its id, the operation, and the
// payload that accompanied it.
func ChangeHash(id string, op Operation, data any) (string, error) {
	return ContentHash(DomainChange, map[string]any{
		"id":        id,
		"operation": op,
		"data":      data,
	})
}

func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
