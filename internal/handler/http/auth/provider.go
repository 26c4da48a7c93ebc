// Package auth authenticates the storefront plugin against the bridge.
// There are no interactive users: a single service account, configured
// through the environment, obtains a short-lived JWT and presents it on
// every RPC call.
package auth

import (
	"crypto/subtle"
	"errors"
	"os"
)

// Credentials are the service-account credentials presented by the
// storefront when requesting a token.
type Credentials struct {
	Account string
	Secret  string
}

// Provider validates service-account credentials.
type Provider struct {
	account string
	secret  string
}

// NewProviderFromEnv reads SERVICE_ACCOUNT and SERVICE_ACCOUNT_SECRET.
func NewProviderFromEnv() *Provider {
	return &Provider{
		account: os.Getenv("SERVICE_ACCOUNT"),
		secret:  os.Getenv("SERVICE_ACCOUNT_SECRET"),
	}
}

// Validate checks the presented credentials using constant-time
// comparison. An unconfigured provider rejects everything.
func (p *Provider) Validate(creds Credentials) error {
	if creds.Account == "" || creds.Secret == "" {
		return errors.New("credentials must not be empty")
	}
	if p.account == "" || p.secret == "" {
		return errors.New("service account is not configured")
	}
	accountMatch := subtle.ConstantTimeCompare([]byte(creds.Account), []byte(p.account)) == 1
	secretMatch := subtle.ConstantTimeCompare([]byte(creds.Secret), []byte(p.secret)) == 1
	if !accountMatch || !secretMatch {
		return errors.New("invalid credentials")
	}
	return nil
}
