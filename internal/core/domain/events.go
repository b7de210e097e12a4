package domain

import "time"

// LoginFailureKind classifies why a login attempt failed. Unknown account and
// password mismatch are reported under the same kind so that downstream
// consumers cannot distinguish them either.
type LoginFailureKind string

const (
	LoginFailureNone               LoginFailureKind = ""
	LoginFailureInvalidCredentials LoginFailureKind = "invalid_credentials"
	LoginFailureInternal           LoginFailureKind = "internal"
)

// AccountRegisteredEvent is emitted after a registration commits.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    int64
	Username     string
	Email        string
	RegisteredAt time.Time
}

// LoginAttemptEvent is emitted for every completed login workflow, successful
// or not. Email is masked by the publisher before the event leaves the
// process.
type LoginAttemptEvent struct {
	EventID     string
	AccountID   int64
	Email       string
	Succeeded   bool
	FailureKind LoginFailureKind
	AttemptedAt time.Time
}

// StartupValidatedEvent records the outcome of a secret provisioning check.
type StartupValidatedEvent struct {
	EventID   string
	Passed    bool
	Problems  []string
	CheckedAt time.Time
}
