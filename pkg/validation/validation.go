// Package validation provides input validation for ship specifications,
// controller gains and simulation configuration.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
)

// Limits for user supplied names
const (
	MaxShipNameLen = 32
)

// Regular expressions for input validation
var (
	// Allow alphanumeric, spaces, hyphens, underscores and dots for ship names
	validShipNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)
)

// ValidateShipName validates and trims a ship name
func ValidateShipName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("ship name cannot be empty")
	}

	if len(name) > MaxShipNameLen {
		return "", fmt.Errorf("ship name too long: %d characters (max %d)", len(name), MaxShipNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("ship name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("ship name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("ship name contains control characters")
		}
	}

	if !validShipNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("ship name contains invalid characters (only alphanumeric, spaces, hyphens, underscores and dots allowed)")
	}

	return trimmed, nil
}

// ValidateFinite rejects NaN and infinities.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be finite, got %v", field, v)
	}
	return nil
}

// ValidatePositive requires a finite value > 0.
func ValidatePositive(field string, v float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative requires a finite value >= 0.
func ValidateNonNegative(field string, v float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%s cannot be negative, got %v", field, v)
	}
	return nil
}

// ValidateVec3 requires every component to be finite.
func ValidateVec3(field string, v mgl64.Vec3) error {
	for i, c := range v {
		if err := ValidateFinite(fmt.Sprintf("%s[%d]", field, i), c); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePositiveVec3 requires every component to be finite and > 0.
func ValidatePositiveVec3(field string, v mgl64.Vec3) error {
	for i, c := range v {
		if err := ValidatePositive(fmt.Sprintf("%s[%d]", field, i), c); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGains requires finite, non-negative PID coefficients.
func ValidateGains(field string, kp, ki, kd float64) error {
	return errors.Join(
		ValidateNonNegative(field+".kp", kp),
		ValidateNonNegative(field+".ki", ki),
		ValidateNonNegative(field+".kd", kd),
	)
}

// ValidateOneOf checks value against a fixed set of options.
func ValidateOneOf(field, value string, options ...string) error {
	for _, o := range options {
		if value == o {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (must be one of %s)", field, value, strings.Join(options, ", "))
}

// Collector accumulates validation errors so that every problem is
// reported at once.
type Collector struct {
	errs []error
}

// Check records err if it is non-nil.
func (c *Collector) Check(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// Err returns the joined errors, or nil.
func (c *Collector) Err() error {
	return errors.Join(c.errs...)
}
