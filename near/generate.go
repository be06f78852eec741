package near

import (
	"encoding/base64"

	"github.com/AlexZinkM/narwallet/internal/common"
	"github.com/AlexZinkM/narwallet/internal/keys"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/vault"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// CreateImplicitAccount generates a seed phrase, stores the derived key as an
// implicit account of network and returns the account with its phrase.
// The phrase is the only backup of the key, show it once.
func CreateImplicitAccount(v *vault.Vault, s *vault.Session, network string) (model.Account, string, error) {
	phrase, err := keys.NewSeedPhrase()
	if err != nil {
		return model.Account{}, "", err
	}

	acc, err := v.ImportFromSeedPhrase(s, network, "", phrase)
	if err != nil {
		return model.Account{}, "", err
	}
	return acc, phrase, nil
}

// AccountQRCode renders accountID as a base64 PNG QR code for receiving funds
func AccountQRCode(accountID string) (string, error) {
	if err := common.ValidateAccountID("account", accountID); err != nil {
		return "", err
	}
	return generateQRCode(accountID)
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", errors.Wrap(err, "failed to create QR code")
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate PNG")
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
