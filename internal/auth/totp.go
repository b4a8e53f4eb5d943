package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// GenerateMFASecret provisions a new TOTP secret for the account.
// The returned URL is the otpauth provisioning URI for authenticator apps.
func GenerateMFASecret(issuer, account string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

func ValidateMFACode(secret, code string) bool {
	return totp.Validate(code, secret)
}
