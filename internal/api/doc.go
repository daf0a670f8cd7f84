// Package api handles incoming HTTP requests, request validation and
// response formatting. It acts as an adapter between external clients and
// the auth and task services, translating service errors into status codes
// and safe messages.
package api
