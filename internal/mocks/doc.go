// Package mocks provides centralized test doubles for the store and auth
// interfaces.
//
// Mocks expose function fields for per-test behavior. Without overrides,
// MockUserStore and MockTaskStore behave like in-memory stores, which lets
// HTTP tests drive the full router without a database:
//
//	users := mocks.NewMockUserStore()
//	tasks := mocks.NewMockTaskStore()
//	hasher := &mocks.MockPasswordHasher{}
package mocks
