package auth

import (
	"os"
)

// Credentials are held only for the duration of one authentication attempt
// and are never written anywhere by this package.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Valid() bool {
	return c.Email != "" && c.Password != ""
}

// CredentialsFromEnv reads AMAZON_EMAIL / AMAZON_PASSWORD. The second return
// is false when either is unset, signalling the caller to prompt instead.
func CredentialsFromEnv() (Credentials, bool) {
	creds := Credentials{
		Email:    os.Getenv("AMAZON_EMAIL"),
		Password: os.Getenv("AMAZON_PASSWORD"),
	}
	return creds, creds.Valid()
}
