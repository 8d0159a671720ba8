// Package validation provides input validation for tool arguments.
package validation

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MaxStringLength is the maximum accepted length for string arguments.
const MaxStringLength = 256

var (
	// txHashRegex validates 0x-prefixed 32-byte transaction hashes
	txHashRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	// chainRegex validates chain identifiers (lowercase names like "ethereum")
	chainRegex = regexp.MustCompile(`^[a-z0-9-]{1,32}$`)
)

// IsValidEthAddress checks if a string is a valid Ethereum address.
func IsValidEthAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

// IsValidTxHash checks if a string is a 0x-prefixed 64-hex-char hash.
func IsValidTxHash(hash string) bool {
	return txHashRegex.MatchString(hash)
}

// IsValidChain checks if a string looks like a chain identifier after
// normalization. Chain support itself is the route provider's concern.
func IsValidChain(chain string) bool {
	return chainRegex.MatchString(NormalizeChain(chain))
}

// NormalizeChain lowercases and trims a chain identifier.
func NormalizeChain(chain string) string {
	return strings.ToLower(strings.TrimSpace(chain))
}

// IsValidAmount checks if a value is a well-formed non-negative decimal
// string. Zero is allowed; callers that need positivity check separately.
func IsValidAmount(value string) bool {
	if value == "" || len(value) > MaxStringLength {
		return false
	}
	decimalCount := 0
	for i, c := range value {
		if c == '.' {
			decimalCount++
			if decimalCount > 1 || i == 0 || i == len(value)-1 {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate runs the given validators and collects their errors.
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errs ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidChain checks if a field is a plausible chain identifier.
func ValidChain(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // use Required for required fields
		}
		if !IsValidChain(value) {
			return &ValidationError{Field: field, Message: "must be a chain name like 'ethereum'"}
		}
		return nil
	}
}

// ValidAddress checks if a field is a valid Ethereum address
func ValidAddress(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if !IsValidEthAddress(value) {
			return &ValidationError{Field: field, Message: "must be a valid Ethereum address (0x...)"}
		}
		return nil
	}
}

// ValidAmount checks if a field is a well-formed non-negative decimal.
func ValidAmount(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if !IsValidAmount(value) {
			return &ValidationError{Field: field, Message: "must be a non-negative decimal number"}
		}
		return nil
	}
}

// ValidTxHash checks if a field is a well-formed transaction hash.
func ValidTxHash(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if !IsValidTxHash(value) {
			return &ValidationError{Field: field, Message: "must be a 0x-prefixed 64-character hex hash"}
		}
		return nil
	}
}
