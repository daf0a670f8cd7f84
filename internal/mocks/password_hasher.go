package mocks

import (
	"errors"
	"strings"
	"sync"

	"github.com/phrazzld/task-api/internal/service/auth"
)

// hashPrefix marks hashes produced by MockPasswordHasher.
const hashPrefix = "mock-hash:"

// MockPasswordHasher implements auth.PasswordHasher for testing. By default it
// "hashes" by prefixing the password, which keeps tests fast and deterministic.
type MockPasswordHasher struct {
	// HashFn allows for custom hashing logic in tests
	HashFn func(password string) (string, error)

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	mu               sync.Mutex
	compareCallCount int
}

// Ensure MockPasswordHasher implements auth.PasswordHasher interface
var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return hashPrefix + password, nil
}

// Compare implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.compareCallCount++
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if !strings.HasPrefix(hashedPassword, hashPrefix) || hashedPassword[len(hashPrefix):] != password {
		return errors.New("password mismatch")
	}
	return nil
}

// CompareCallCount reports how many times Compare was called.
func (m *MockPasswordHasher) CompareCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compareCallCount
}
