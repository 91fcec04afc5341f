package domain

import (
	"fmt"
	"strings"
)

// TokenPolicy decides what the Windows backend does when the process token
// cannot be opened.
type TokenPolicy string

// Token policies.
const (
	// TokenPolicyDegrade returns the username (if any) with empty SID fields
	// and marks the snapshot partial.
	TokenPolicyDegrade TokenPolicy = "degrade"
	// TokenPolicyStrict fails the resolution with an AccessDeniedError.
	TokenPolicyStrict TokenPolicy = "strict"
)

// ParseTokenPolicy parses a policy name. The empty string selects the default.
func ParseTokenPolicy(s string) (TokenPolicy, error) {
	switch TokenPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TokenPolicyDegrade:
		return TokenPolicyDegrade, nil
	case TokenPolicyStrict:
		return TokenPolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown token policy %q: use 'degrade' or 'strict'", s)
	}
}
