// Package keyring stores cryptshred passwords in the OS credential store.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "cryptshred"

// DefaultAccount is used when no account name is configured
const DefaultAccount = "default"

// ErrNotFound is returned when no password is stored for the account
var ErrNotFound = keyring.ErrNotFound

func account(name string) string {
	if name == "" {
		return DefaultAccount
	}
	return name
}

// SavePassword stores a password in the OS keyring
func SavePassword(name string, password []byte) error {
	return keyring.Set(serviceName, account(name), string(password))
}

// GetPassword retrieves a password from the OS keyring.
// The returned slice is owned by the caller.
func GetPassword(name string) ([]byte, error) {
	secret, err := keyring.Get(serviceName, account(name))
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}

// DeletePassword removes a password from the OS keyring.
// Deleting a password that does not exist is not an error.
func DeletePassword(name string) error {
	err := keyring.Delete(serviceName, account(name))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(name string) bool {
	_, err := keyring.Get(serviceName, account(name))
	return err == nil
}
