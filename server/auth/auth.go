package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Daskott/instantdoc/server/auth/key"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	SESSION_TOKEN_TTL = time.Hour
	TOKEN_ISSUER      = "instantdoc"
)

type SessionTokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.StandardClaims
}

// NewSessionTokenClaims returns claims for a session token that expires SESSION_TOKEN_TTL after 'issuedAt'
func NewSessionTokenClaims(userID uint, name, email string, issuedAt time.Time) SessionTokenClaims {
	return SessionTokenClaims{
		Name:  name,
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(userID),
			Issuer:    TOKEN_ISSUER,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(SESSION_TOKEN_TTL).Unix(),
		},
	}
}

// UserID returns the id of the user the token was issued to
func (claims *SessionTokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject %q: %v", claims.Subject, err)
	}

	return uint(id), nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims SessionTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)
	token.Header["kid"] = keyPair.Kid

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*SessionTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*SessionTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to SessionTokenClaims")
	}

	return tokenClaims, nil
}
