package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"clubvoice/config"
)

func secretKey() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateToken creates a signed JWT with the given subject, role and
// club scope. Used by operators provisioning dashboard access; token
// issuance for end users lives in the external auth service.
func GenerateToken(subject, role, clubID string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     subject,
		"role":    role,
		"club_id": clubID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractActorFromToken returns the subject, role and club scope of a
// valid token.
func ExtractActorFromToken(tokenString string) (subject, role, clubID string, err error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", "", errors.New("invalid token")
	}
	subject, _ = claims["sub"].(string)
	if subject == "" {
		return "", "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ = claims["role"].(string)
	clubID, _ = claims["club_id"].(string)
	return subject, role, clubID, nil
}
