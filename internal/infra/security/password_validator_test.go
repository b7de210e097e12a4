package security

import (
	"errors"
	"testing"
)

func TestDefaultPasswordValidatorAcceptsCompliantPassword(t *testing.T) {
	validator := DefaultPasswordValidator()

	if err := validator.Validate("Str0ng!Pass"); err != nil {
		t.Fatalf("expected password to pass, got %v", err)
	}
}

func TestDefaultPasswordValidatorRejections(t *testing.T) {
	validator := DefaultPasswordValidator()

	cases := []struct {
		name     string
		password string
		code     string
	}{
		{"too short", "short", "min_length"},
		{"no uppercase or digit", "password!", "uppercase"},
		{"no special", "Password1", "special"},
		{"digits only", "12345678", "uppercase"},
		{"no lowercase", "PASSWORD1!", "lowercase"},
		{"no digit", "Password!", "digit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(tc.password)
			if err == nil {
				t.Fatalf("expected %q to be rejected", tc.password)
			}

			var policyErr *PasswordValidationError
			if !errors.As(err, &policyErr) {
				t.Fatalf("expected PasswordValidationError, got %T", err)
			}
			if policyErr.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, policyErr.Code)
			}
		})
	}
}

func TestSpecialCharacterSetCoverage(t *testing.T) {
	validator := DefaultPasswordValidator()

	for _, r := range SpecialCharacters {
		password := "Passw0rd" + string(r)
		if err := validator.Validate(password); err != nil {
			t.Fatalf("expected %q to satisfy the special rule, got %v", password, err)
		}
	}
}

func TestPolicyValidatorMinLengthOverride(t *testing.T) {
	validator := NewPolicyValidator(PolicyConfig{MinLength: 12})

	if err := validator.Validate("Str0ng!Pass"); err == nil {
		t.Fatal("expected eleven character password to fail twelve character minimum")
	}
	if err := validator.Validate("Str0ng!Pass+1"); err != nil {
		t.Fatalf("expected longer password to pass, got %v", err)
	}
}

func TestStrengthRuleDisabledByDefault(t *testing.T) {
	validator := NewPolicyValidator(PolicyConfig{})

	// Predictable but policy compliant. Only the opt-in strength rule
	// would reject it.
	if err := validator.Validate("Password1!"); err != nil {
		t.Fatalf("expected strength rule to be disabled, got %v", err)
	}
}

func TestStrengthRuleRejectsWeakPasswordWhenEnabled(t *testing.T) {
	rule := RequirePasswordStrengthRule(4)

	if err := rule.Validate("Password1!"); err == nil {
		t.Fatal("expected common pattern to fail the maximum strength requirement")
	}
}
