// Package claims reads claims out of JWT-shaped access tokens.
//
// Decoding is structural only: the signature, expiry and audience are never
// checked, so a decoded claim must not be taken as proof of authentication.
package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ClientNumberClaim is the claim that carries the client identifier
const ClientNumberClaim = "clientNum"

var (
	// ErrMalformedToken indicates that the token payload can not be decoded
	ErrMalformedToken = errors.New("malformed token")

	// ErrClaimMissing indicates that the payload has no client number claim
	ErrClaimMissing = errors.New("claim missing")
)

// Decoder extracts claims without verifying tokens
type Decoder struct {
	parser *jwt.Parser
	claim  string
}

// NewDecoder creates a decoder reading the given claim.
// Empty claim means ClientNumberClaim.
func NewDecoder(claim string) *Decoder {
	if claim == "" {
		claim = ClientNumberClaim
	}
	return &Decoder{
		parser: jwt.NewParser(jwt.WithPaddingAllowed()),
		claim:  claim,
	}
}

// Decode returns the token's claims payload.
// Only the second segment is read: header and signature may be anything.
func (d *Decoder) Decode(token string) (jwt.MapClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: missing payload segment", ErrMalformedToken)
	}

	payload, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	claims := jwt.MapClaims{}
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return claims, nil
}

// ClientNumber returns the client number claim of token.
// Integral numbers come back as int64, anything else as carried by the payload.
func (d *Decoder) ClientNumber(token string) (any, error) {
	claims, err := d.Decode(token)
	if err != nil {
		return nil, err
	}

	value, ok := claims[d.claim]
	if !ok || value == nil {
		return nil, fmt.Errorf("%w: %s", ErrClaimMissing, d.claim)
	}

	if number, ok := value.(json.Number); ok {
		if n, err := number.Int64(); err == nil {
			return n, nil
		}
		if f, err := number.Float64(); err == nil {
			return f, nil
		}
	}

	return value, nil
}
