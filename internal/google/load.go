package google

import (
	"errors"
	"fmt"

	"github.com/hugh/member-sync/pkg/config"
)

// ErrNoServiceAccount means no form of the credential bundle is configured.
var ErrNoServiceAccount = errors.New("no service account configured")

// Decrypter opens the age-sealed bundle.
type Decrypter interface {
	DecryptString(ciphertext string) (string, error)
}

// LoadServiceAccount resolves the service identity from configuration. The
// plain JSON bundle wins, then the sealed bundle, then the discrete fields.
func LoadServiceAccount(cfg config.GoogleConfig, dec Decrypter) (*ServiceAccount, error) {
	switch {
	case cfg.ServiceAccountJSON != "":
		return ParseServiceAccount([]byte(cfg.ServiceAccountJSON))

	case cfg.ServiceAccountAge != "":
		if dec == nil {
			return nil, errors.New("GOOGLE_SERVICE_ACCOUNT_AGE set but ENCRYPTION_KEY is missing")
		}
		plain, err := dec.DecryptString(cfg.ServiceAccountAge)
		if err != nil {
			return nil, fmt.Errorf("opening sealed service account: %w", err)
		}
		return ParseServiceAccount([]byte(plain))

	case cfg.ClientEmail != "" || cfg.PrivateKey != "":
		return NewServiceAccount(cfg.ClientEmail, cfg.PrivateKey, cfg.PrivateKeyID, cfg.TokenURI, cfg.AuthURI)
	}
	return nil, ErrNoServiceAccount
}
