package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognized by the API
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Identity is the authenticated caller extracted from a token
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Validator validates bearer tokens
type Validator interface {
	Validate(ctx context.Context, token string) (Identity, error)
}

// JWTValidator validates RS256 JWT tokens
type JWTValidator struct {
	publicKey *rsa.PublicKey
}

// NewJWTValidator creates a new JWT validator from a PEM encoded public key
func NewJWTValidator(publicKeyPEM string) (*JWTValidator, error) {
	if publicKeyPEM == "" {
		return nil, fmt.Errorf("public key PEM is required")
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block containing public key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not an RSA key")
	}

	return &JWTValidator{publicKey: rsaPublicKey}, nil
}

// NewJWTValidatorFromFile creates a new JWT validator from a PEM file path
func NewJWTValidatorFromFile(publicKeyPath string) (*JWTValidator, error) {
	publicKeyPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	return NewJWTValidator(string(publicKeyPEM))
}

// Validate validates a JWT token and returns the caller identity
func (v *JWTValidator) Validate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("empty token")
	}

	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if len(token) < 10 {
		return Identity{}, fmt.Errorf("token too short")
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return Identity{}, fmt.Errorf("failed to parse JWT token: %w", err)
	}
	if !parsedToken.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("failed to extract claims from token")
	}
	if err := validateClaims(claims); err != nil {
		return Identity{}, fmt.Errorf("claim validation failed: %w", err)
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		userID, ok = claims["user_id"].(string)
		if !ok {
			return Identity{}, fmt.Errorf("user ID not found in token claims")
		}
	}
	if strings.TrimSpace(userID) == "" {
		return Identity{}, fmt.Errorf("user ID is empty")
	}

	identity := Identity{UserID: userID, Role: RoleClient}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if role, ok := claims["role"].(string); ok && role != "" {
		identity.Role = role
	}
	return identity, nil
}

func validateClaims(claims jwt.MapClaims) error {
	if exp, ok := claims["exp"].(float64); ok {
		expTime := time.Unix(int64(exp), 0)
		if time.Now().After(expTime) {
			return fmt.Errorf("token has expired at %v", expTime)
		}
	} else {
		return fmt.Errorf("expiration claim (exp) is missing")
	}

	// 5 minute tolerance for clock skew
	if iat, ok := claims["iat"].(float64); ok {
		iatTime := time.Unix(int64(iat), 0)
		if time.Now().Before(iatTime.Add(-5 * time.Minute)) {
			return fmt.Errorf("token issued in the future: %v", iatTime)
		}
	}

	if nbf, ok := claims["nbf"].(float64); ok {
		nbfTime := time.Unix(int64(nbf), 0)
		if time.Now().Before(nbfTime) {
			return fmt.Errorf("token not valid until %v", nbfTime)
		}
	}

	return nil
}

// ExtractTokenFromAuthHeader extracts the token from an Authorization header
func ExtractTokenFromAuthHeader(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return authHeader
}
