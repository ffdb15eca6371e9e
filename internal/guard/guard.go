// Package guard decides whether a session token grants access to an operation.
//
// The same decision is evaluated at the request boundary, where it is
// authoritative, and at the navigation boundary, where it only steers the
// client router.
package guard

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"mess_finder/internal/model"
	"mess_finder/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Outcome is the state a token ends in after evaluation
type Outcome int

const (
	Absent Outcome = iota
	Invalid
	Expired
	WrongRole
	Authorized
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Invalid:
		return "invalid"
	case Expired:
		return "expired"
	case WrongRole:
		return "wrong_role"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}

// Principal is the identity carried by a validated token
type Principal struct {
	UserID    int
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Decision is the result of evaluating one token against one operation
type Decision struct {
	Outcome   Outcome
	Principal *Principal // set for WrongRole and Authorized
}

// Status maps the decision onto the HTTP taxonomy
func (d Decision) Status() int {
	switch d.Outcome {
	case Authorized:
		return http.StatusOK
	case WrongRole:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// Message is the client-facing reason for a rejection
func (d Decision) Message() string {
	switch d.Outcome {
	case Absent:
		return "Authorization token required"
	case Invalid:
		return "Invalid token"
	case Expired:
		return "Token expired"
	case WrongRole:
		return "You do not have permission to access this resource"
	}
	return ""
}

// Verifier checks a token signature and expiry at a given instant
type Verifier interface {
	ValidateTokenAt(tokenString string, now time.Time) (*utils.JWTClaims, error)
}

// Evaluate runs the guard sequence: presence, signature and structure, expiry,
// then role. An empty allowed set accepts any role in the closed role set.
func Evaluate(v Verifier, token string, now time.Time, allowed ...string) Decision {
	token = strings.TrimSpace(token)
	if token == "" {
		return Decision{Outcome: Absent}
	}

	claims, err := v.ValidateTokenAt(token, now)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Decision{Outcome: Expired}
		}
		return Decision{Outcome: Invalid}
	}
	if claims.UserID <= 0 || claims.ExpiresAt == nil {
		return Decision{Outcome: Invalid}
	}

	p := &Principal{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if !RoleAllowed(claims.Role, allowed) {
		return Decision{Outcome: WrongRole, Principal: p}
	}
	return Decision{Outcome: Authorized, Principal: p}
}

// RoleAllowed reports whether role satisfies the allowed set
func RoleAllowed(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return model.IsValidRole(role)
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
