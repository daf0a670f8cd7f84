// Package auth implements user registration, login and access token handling.
//
// Passwords are hashed with bcrypt and tokens are HS256-signed JWTs carrying
// the user id. Service is the entry point used by the HTTP layer.
package auth
