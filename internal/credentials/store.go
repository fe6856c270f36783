package credentials

import (
	"errors"

	"nathanbeddoewebdev/dropproxy/internal/util"

	"github.com/zalando/go-keyring"
)

// ServiceName is the keychain service every secret is stored under.
const ServiceName = "dropproxy"

var ErrTokenNotFound = errors.New("credential not found in keychain")

// Store persists individual secrets by key.
type Store interface {
	SetToken(key string, token string) error
	GetToken(key string) (string, error)
	DeleteToken(key string) error
}

// DefaultStore returns the standard store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetToken(key string, token string) error {
	return keyring.Set(k.serviceName, util.NormalizeKey(key), token)
}

func (k *KeyringStore) GetToken(key string) (string, error) {
	token, err := keyring.Get(k.serviceName, util.NormalizeKey(key))
	if err == nil {
		return token, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	return "", err
}

func (k *KeyringStore) DeleteToken(key string) error {
	err := keyring.Delete(k.serviceName, util.NormalizeKey(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}

// MockStore is an in-memory store for testing.
type MockStore struct {
	tokens map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]string)}
}

func (m *MockStore) SetToken(key string, token string) error {
	m.tokens[util.NormalizeKey(key)] = token
	return nil
}

func (m *MockStore) GetToken(key string) (string, error) {
	token, ok := m.tokens[util.NormalizeKey(key)]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (m *MockStore) DeleteToken(key string) error {
	key = util.NormalizeKey(key)
	if _, ok := m.tokens[key]; !ok {
		return ErrTokenNotFound
	}
	delete(m.tokens, key)
	return nil
}
