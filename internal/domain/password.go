package domain

import (
	"fmt"
	"unicode"
)

// PasswordRule is an independent predicate over a candidate password.
// Name identifies the rule in violation reports.
type PasswordRule struct {
	Name  string
	Check func(candidate string) bool
}

// MinLengthRule requires at least n characters.
func MinLengthRule(n int) PasswordRule {
	return PasswordRule{
		Name:  fmt.Sprintf("min_length_%d", n),
		Check: func(s string) bool { return len([]rune(s)) >= n },
	}
}

// UppercaseRule requires at least one uppercase letter.
func UppercaseRule() PasswordRule {
	return PasswordRule{
		Name: "uppercase",
		Check: func(s string) bool {
			for _, r := range s {
				if unicode.IsUpper(r) {
					return true
				}
			}
			return false
		},
	}
}

// DigitRule requires at least one digit.
func DigitRule() PasswordRule {
	return PasswordRule{
		Name: "digit",
		Check: func(s string) bool {
			for _, r := range s {
				if unicode.IsDigit(r) {
					return true
				}
			}
			return false
		},
	}
}

// DefaultPasswordRules returns the default policy: minimum length 8, at
// least one uppercase letter, at least one digit.
func DefaultPasswordRules() []PasswordRule {
	return []PasswordRule{MinLengthRule(8), UppercaseRule(), DigitRule()}
}

// ValidatePassword evaluates every rule and reports all violations together,
// so a caller can render the complete remediation list in one pass. Returns
// nil when the candidate satisfies every rule.
func ValidatePassword(candidate string, rules []PasswordRule) error {
	var violations []string
	for _, rule := range rules {
		if !rule.Check(candidate) {
			violations = append(violations, rule.Name)
		}
	}
	if len(violations) > 0 {
		return &PolicyViolationError{Violations: violations}
	}
	return nil
}
