package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by every bearer token: the acting user,
// their email, and the organization whose data they may touch. User and
// organization ids coincide today because the organization record is the
// login principal.
type Claims struct {
	UserID         int64  `json:"id"`
	Email          string `json:"email"`
	OrganizationID int64  `json:"organization_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens with a server-held
// secret and a fixed expiry window.
type TokenManager struct {
	secret    []byte
	issuer    string
	expiresIn time.Duration
}

func NewTokenManager(secret, issuer string, expiresIn time.Duration) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "hrms"
	}
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, expiresIn: expiresIn}
}

// ExpiresIn reports the configured token lifetime.
func (tm *TokenManager) ExpiresIn() time.Duration {
	return tm.expiresIn
}

func (tm *TokenManager) GenerateToken(userID, organizationID int64, email string) (string, error) {
	if userID == 0 || organizationID == 0 {
		return "", fmt.Errorf("user id and organization id required")
	}
	now := time.Now()
	claims := Claims{
		UserID:         userID,
		Email:          email,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken splits a "Bearer <token>" authorization header.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
