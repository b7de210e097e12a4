package domain

import "time"

// Account mirrors the persisted representation in the accounts table.
// The identifier is assigned by storage on insert and never changes; the
// password hash is an internal field and must not cross the transport
// boundary in responses.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Sanitized returns a copy of the account with the password hash removed.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	return a
}

// AccountDraft carries the fields the registration workflow asks storage to
// persist. ID and CreatedAt are assigned by the repository.
type AccountDraft struct {
	Username     string
	Email        string
	PasswordHash string
}
