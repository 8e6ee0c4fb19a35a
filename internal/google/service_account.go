package google

import (
	"crypto/rsa"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// ServiceAccount is the service identity used against the authenticated
// Sheets API.
type ServiceAccount struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
	AuthURI      string `json:"auth_uri"`
}

// ParseServiceAccount decodes a service-account JSON bundle.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, &ParseError{Reason: "malformed JSON", Err: err}
	}
	if err := sa.normalize(); err != nil {
		return nil, err
	}
	return &sa, nil
}

// NewServiceAccount assembles a bundle from discrete settings.
func NewServiceAccount(clientEmail, privateKey, privateKeyID, tokenURI, authURI string) (*ServiceAccount, error) {
	sa := ServiceAccount{
		ClientEmail:  clientEmail,
		PrivateKey:   privateKey,
		PrivateKeyID: privateKeyID,
		TokenURI:     tokenURI,
		AuthURI:      authURI,
	}
	if err := sa.normalize(); err != nil {
		return nil, err
	}
	return &sa, nil
}

func (sa *ServiceAccount) normalize() error {
	sa.ClientEmail = strings.TrimSpace(sa.ClientEmail)
	// Keys pasted into env vars usually arrive with literal \n sequences.
	sa.PrivateKey = strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")

	if sa.ClientEmail == "" {
		return &ParseError{Reason: "missing client_email"}
	}
	if strings.TrimSpace(sa.PrivateKey) == "" {
		return &ParseError{Reason: "missing private_key"}
	}
	if sa.TokenURI == "" {
		sa.TokenURI = DefaultTokenURI
	}
	return nil
}

// SigningKey parses the PEM private key (PKCS#1 or PKCS#8).
func (sa *ServiceAccount) SigningKey() (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, &ParseError{Reason: "unreadable private_key", Err: err}
	}
	return key, nil
}
