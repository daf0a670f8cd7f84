// Package service contains the task use cases. It sits between the HTTP
// handlers and the persistence layer defined in internal/store.
//
// Every operation on a single task goes through one ownership check, and a
// task owned by someone else is reported exactly like a missing one.
// Authentication lives in the auth subpackage.
package service
