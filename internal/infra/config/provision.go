package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Environment keys the provisioning validator requires.
const (
	EnvDatabaseURL       = "DATABASE_URL"
	EnvSigningSecretPath = "JWT_SECRET_PATH"
)

const (
	// minSigningSecretBytes is the minimum trimmed length of the signing
	// secret file; anything shorter is insufficient entropy for HMAC signing.
	minSigningSecretBytes = 32

	// probeTimeout bounds the database connectivity check so startup fails
	// closed instead of hanging on an unreachable host.
	probeTimeout = 5 * time.Second
)

// ConfigurationError reports a missing or malformed secret, or an unreachable
// dependency, detected before the process accepts traffic.
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidatedSecrets is the result of a successful provisioning run. Downstream
// components treat these values as already checked and must not re-validate.
type ValidatedSecrets struct {
	DatabaseURL   Secret
	SigningSecret Secret
}

// Validator checks the required secrets at startup and on demand. It is
// idempotent: running it twice with unchanged secrets yields the same verdict.
type Validator struct {
	lookupEnv func(string) (string, bool)
	probe     func(ctx context.Context, dsn string) error
}

// NewValidator constructs a validator using the process environment and a
// live PostgreSQL connectivity probe.
func NewValidator() *Validator {
	return &Validator{
		lookupEnv: os.LookupEnv,
		probe:     probePostgres,
	}
}

// WithEnvLookup overrides environment access (primarily for testing).
func (v *Validator) WithEnvLookup(lookup func(string) (string, bool)) *Validator {
	if lookup != nil {
		v.lookupEnv = lookup
	}
	return v
}

// WithProbe overrides the database connectivity probe (primarily for testing).
func (v *Validator) WithProbe(probe func(ctx context.Context, dsn string) error) *Validator {
	if probe != nil {
		v.probe = probe
	}
	return v
}

// Validate runs every provisioning check and returns either the validated
// secrets or all startup-blocking problems joined into one error.
func (v *Validator) Validate(ctx context.Context) (*ValidatedSecrets, error) {
	var problems []error

	databaseURL, ok := v.lookupEnv(EnvDatabaseURL)
	if !ok || strings.TrimSpace(databaseURL) == "" {
		problems = append(problems, &ConfigurationError{Key: EnvDatabaseURL, Reason: "not set"})
	} else if err := v.probe(ctx, databaseURL); err != nil {
		problems = append(problems, &ConfigurationError{Key: EnvDatabaseURL, Reason: "database unreachable", Err: err})
	}

	var signingSecret string
	secretPath, ok := v.lookupEnv(EnvSigningSecretPath)
	if !ok || strings.TrimSpace(secretPath) == "" {
		problems = append(problems, &ConfigurationError{Key: EnvSigningSecretPath, Reason: "not set"})
	} else {
		secret, err := readSigningSecret(secretPath)
		if err != nil {
			problems = append(problems, err)
		} else {
			signingSecret = secret
		}
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	return &ValidatedSecrets{
		DatabaseURL:   NewSecret(databaseURL),
		SigningSecret: NewSecret(signingSecret),
	}, nil
}

func readSigningSecret(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ConfigurationError{Key: EnvSigningSecretPath, Reason: "secret file does not exist", Err: err}
		}
		return "", &ConfigurationError{Key: EnvSigningSecretPath, Reason: "stat secret file", Err: err}
	}

	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", &ConfigurationError{
			Key:    EnvSigningSecretPath,
			Reason: fmt.Sprintf("secret file permissions %04o are broader than owner-only", perm),
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", &ConfigurationError{Key: EnvSigningSecretPath, Reason: "read secret file", Err: err}
	}

	secret := strings.TrimSpace(string(content))
	if len(secret) < minSigningSecretBytes {
		return "", &ConfigurationError{
			Key:    EnvSigningSecretPath,
			Reason: fmt.Sprintf("signing secret is %d bytes, need at least %d", len(secret), minSigningSecretBytes),
		}
	}

	return secret, nil
}

func probePostgres(ctx context.Context, dsn string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second)
		defer closeCancel()
		_ = conn.Close(closeCtx)
	}()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	return nil
}
