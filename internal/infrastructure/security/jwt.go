package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// sessionTokenType marks tokens issued for dashboard sessions.
const sessionTokenType = "dashboard_session"

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateSessionToken creates a signed dashboard session token carrying
// a ULID session id.
func GenerateSessionToken(jwtSecret string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sid":  GenerateULID(),
		"type": sessionTokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// IsSessionToken reports whether the claims belong to a dashboard session
// token issued by GenerateSessionToken.
func IsSessionToken(claims jwt.MapClaims) bool {
	tokenType, ok := claims["type"].(string)
	return ok && tokenType == sessionTokenType
}
