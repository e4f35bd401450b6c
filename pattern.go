package aobscan

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSignature is returned by CompileSignature when a token is
// neither a wildcard nor a two-hex-digit byte value.
var ErrMalformedSignature = errors.New("malformed signature")

// Pattern is a compiled AOB signature: a sequence of exact byte values
// with a parallel mask marking wildcard positions. Patterns are
// immutable and reusable across any number of scans and snapshots.
type Pattern struct {
	bytes    []byte
	wildcard []bool
}

// CompileSignature compiles a textual signature into a Pattern. The
// signature is space-separated tokens, each either a two-hex-digit byte
// value (case-insensitive) or a wildcard ("?" or "??").
// Example: "8B 3F 93 ?" matches 0x8B 0x3F 0x93 followed by any byte.
func CompileSignature(signature string) (Pattern, error) {
	tokens := strings.Fields(signature)
	if len(tokens) == 0 {
		return Pattern{}, fmt.Errorf("%w: empty signature", ErrMalformedSignature)
	}

	patternBytes := make([]byte, len(tokens))
	wildcardMask := make([]bool, len(tokens))

	for i, token := range tokens {
		if token == "?" || token == "??" {
			wildcardMask[i] = true
			continue
		}

		decoded, err := hex.DecodeString(token)
		if err != nil || len(decoded) != 1 {
			return Pattern{}, fmt.Errorf("%w: invalid token %q", ErrMalformedSignature, token)
		}
		patternBytes[i] = decoded[0]
	}

	return Pattern{bytes: patternBytes, wildcard: wildcardMask}, nil
}

// PatternFromInts builds a Pattern from a sequence of integers where -1
// marks a wildcard position. Any other value is truncated to its low
// byte and matched exactly. The sentinel form keeps the hot matching
// loop to a single comparison per element when callers assemble
// patterns programmatically.
func PatternFromInts(values []int) Pattern {
	patternBytes := make([]byte, len(values))
	wildcardMask := make([]bool, len(values))

	for i, v := range values {
		if v == -1 {
			wildcardMask[i] = true
		} else {
			patternBytes[i] = byte(v)
		}
	}

	return Pattern{bytes: patternBytes, wildcard: wildcardMask}
}

// PatternFromBytes builds a Pattern from a sequence of optional bytes
// where nil marks a wildcard position.
func PatternFromBytes(values []*byte) Pattern {
	patternBytes := make([]byte, len(values))
	wildcardMask := make([]bool, len(values))

	for i, v := range values {
		if v == nil {
			wildcardMask[i] = true
		} else {
			patternBytes[i] = *v
		}
	}

	return Pattern{bytes: patternBytes, wildcard: wildcardMask}
}

// Len returns the length of the pattern in bytes
func (p Pattern) Len() int {
	return len(p.bytes)
}

// String renders the pattern in canonical signature form, hex tokens
// for exact bytes and "?" for wildcards. CompileSignature(p.String())
// reproduces p.
func (p Pattern) String() string {
	var builder strings.Builder
	for i := range p.bytes {
		if i > 0 {
			builder.WriteByte(' ')
		}
		if p.wildcard[i] {
			builder.WriteByte('?')
		} else {
			fmt.Fprintf(&builder, "%02X", p.bytes[i])
		}
	}
	return builder.String()
}

// matchesAt checks if the pattern matches the data at the given position.
// The caller guarantees pos+Len() does not exceed len(data).
func (p Pattern) matchesAt(data []byte, pos int) bool {
	for j := range p.bytes {
		if p.wildcard[j] {
			continue
		}
		if data[pos+j] != p.bytes[j] {
			return false
		}
	}
	return true
}

// StringToSignature converts a literal search string to signature text.
// Wildcard characters (?) become wildcard tokens and the signature is
// padded with wildcards up to minLength.
func StringToSignature(searchStr string, minLength int) string {
	if searchStr == "" {
		return ""
	}

	var builder strings.Builder
	raw := []byte(searchStr)
	signatureLength := len(raw)
	if minLength > signatureLength {
		signatureLength = minLength
	}

	for i := 0; i < signatureLength; i++ {
		if i > 0 {
			builder.WriteByte(' ')
		}

		if i < len(raw) && raw[i] != '?' {
			fmt.Fprintf(&builder, "%02X", raw[i])
		} else {
			builder.WriteByte('?')
		}
	}

	return builder.String()
}
