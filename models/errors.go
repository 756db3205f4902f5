package models

import "errors"

// Sentinel errors shared across the service. Handlers map these to
// user-facing responses with errors.Is; everything else is a 500.
var (
	// ErrInsufficientData indicates a price series too short for a
	// meaningful trend or crossover evaluation, including an empty fetch
	// for an unknown ticker.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrConflict indicates a duplicate username or email at registration.
	ErrConflict = errors.New("username or email already exists")

	// ErrNoMatch is returned for both unknown username and wrong password,
	// so a caller cannot tell which one failed.
	ErrNoMatch = errors.New("invalid credentials")

	// ErrSessionInvalid indicates a token whose server-side session no
	// longer exists (revoked or expired).
	ErrSessionInvalid = errors.New("session invalid or expired")

	// ErrInvalidTicker indicates a ticker that fails syntactic validation
	// before any provider call is made.
	ErrInvalidTicker = errors.New("invalid ticker symbol")
)
