package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID int    `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey  string
	expiration time.Duration
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, expiration time.Duration) *JWTUtil {
	return &JWTUtil{secretKey: secretKey, expiration: expiration}
}

// GenerateToken generates a new JWT token
func (ju *JWTUtil) GenerateToken(userID int, role string) (string, error) {
	return ju.GenerateTokenAt(userID, role, time.Now())
}

// GenerateTokenAt generates a token whose validity window starts at issuedAt
func (ju *JWTUtil) GenerateTokenAt(userID int, role string, issuedAt time.Time) (string, error) {
	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ju.expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   strconv.Itoa(userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ju.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates the JWT token
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	return ju.ValidateTokenAt(tokenString, time.Now())
}

// ValidateTokenAt validates the token signature and checks expiry against now
func (ju *JWTUtil) ValidateTokenAt(tokenString string, now time.Time) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ju.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
