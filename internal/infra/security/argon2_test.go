package security

import (
	"strings"
	"testing"
)

func TestHashPasswordProducesVerifiableEncoding(t *testing.T) {
	encoded, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !strings.HasPrefix(encoded, "argon2id$v=19$") {
		t.Fatalf("unexpected hash prefix: %s", encoded)
	}

	if !VerifyPassword("Str0ng!Pass", encoded) {
		t.Fatal("expected correct password to verify")
	}

	if VerifyPassword("Str0ng!Pass2", encoded) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	first, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected different encodings for the same password")
	}

	if !VerifyPassword("Str0ng!Pass", first) || !VerifyPassword("Str0ng!Pass", second) {
		t.Fatal("expected both encodings to verify")
	}
}

func TestVerifyPasswordRejectsMalformedEncodings(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"missing segments", "argon2id$v=19$m=65536,t=3,p=4"},
		{"bad base64 salt", "argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
		{"bad params", "argon2id$v=19$m=abc,t=3,p=4$c2FsdA$aGFzaA"},
		{"wrong version", "argon2id$v=18$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if VerifyPassword("whatever", tc.encoded) {
				t.Fatalf("expected malformed encoding %q to fail verification", tc.encoded)
			}
		})
	}
}

func TestVerifyPasswordHonoursEmbeddedParams(t *testing.T) {
	original := CurrentArgon2Config()
	t.Cleanup(func() {
		if err := ConfigureArgon2(original); err != nil {
			t.Fatalf("restore argon2 config: %v", err)
		}
	})

	light := original
	light.Memory = 32 * 1024
	light.Iterations = 2
	if err := ConfigureArgon2(light); err != nil {
		t.Fatalf("ConfigureArgon2 returned error: %v", err)
	}

	encoded, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	// Hashes verify against the parameters recorded in the encoding even
	// after the process-wide configuration changes.
	if err := ConfigureArgon2(original); err != nil {
		t.Fatalf("ConfigureArgon2 returned error: %v", err)
	}

	if !VerifyPassword("Str0ng!Pass", encoded) {
		t.Fatal("expected hash created under old params to verify")
	}
}

func TestConfigureArgon2RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Argon2Config
	}{
		{"zero memory", Argon2Config{Memory: 0, Iterations: 3, Parallelism: 4, SaltLength: 16, KeyLength: 32}},
		{"zero iterations", Argon2Config{Memory: 64 * 1024, Iterations: 0, Parallelism: 4, SaltLength: 16, KeyLength: 32}},
		{"zero parallelism", Argon2Config{Memory: 64 * 1024, Iterations: 3, Parallelism: 0, SaltLength: 16, KeyLength: 32}},
		{"short salt", Argon2Config{Memory: 64 * 1024, Iterations: 3, Parallelism: 4, SaltLength: 4, KeyLength: 32}},
		{"short key", Argon2Config{Memory: 64 * 1024, Iterations: 3, Parallelism: 4, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ConfigureArgon2(tc.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}
