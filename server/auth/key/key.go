package key

import (
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
)

const DEFAULT_KEY_ID = "instantdoc-key-id"

type JWKS struct {
	Keys []interface{} `json:"keys"`
}

type KeyPair struct {
	Kid        string
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}

func NewKeyPair(privateKey *rsa.PrivateKey) *KeyPair {
	return &KeyPair{
		Kid:        DEFAULT_KEY_ID,
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}
}

// NewKeyPairFromRSAPrivateKeyPem parses a PKCS1 or PKCS8 PEM encoded RSA private key.
// Escaped newlines (as found in env vars) are accepted.
func NewKeyPairFromRSAPrivateKeyPem(privateKeyPem string) (*KeyPair, error) {
	privateKeyPem = strings.ReplaceAll(privateKeyPem, `\n`, "\n")

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPem))
	if err != nil {
		return nil, fmt.Errorf("unable to parse RSA private key: %v", err)
	}

	return NewKeyPair(privateKey), nil
}

func (keyPair *KeyPair) JWK() (jwk.Key, error) {
	keyPairJWK, err := jwk.New(keyPair.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("JWK: %v", err)
	}

	err = keyPairJWK.Set(jwk.KeyIDKey, keyPair.Kid)
	if err != nil {
		return nil, fmt.Errorf("JWK: %v", err)
	}

	err = keyPairJWK.Set(jwk.AlgorithmKey, "RS256")
	if err != nil {
		return nil, fmt.Errorf("JWK: %v", err)
	}

	return keyPairJWK, nil
}

func ExportJWKAsJWKS(jwk jwk.Key) JWKS {
	return JWKS{Keys: []interface{}{jwk}}
}
