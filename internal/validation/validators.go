package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/medtrack/medtrack/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	// hhmmPattern matches zero-padded 24-hour wall-clock values 00:00-23:59
	hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func init() {
	Validate = validator.New()

	// Register custom validators for domain values
	// These should never fail in normal operation, but panic early if they do
	if err := Validate.RegisterValidation("hhmm", validateTimeOfDay); err != nil {
		panic(fmt.Sprintf("failed to register hhmm validator: %v", err))
	}
	if err := Validate.RegisterValidation("skip_reason", validateSkipReason); err != nil {
		panic(fmt.Sprintf("failed to register skip_reason validator: %v", err))
	}
}

// validateTimeOfDay validates that a string is a well-formed "HH:MM" value
func validateTimeOfDay(fl validator.FieldLevel) bool {
	return hhmmPattern.MatchString(fl.Field().String())
}

// validateSkipReason validates that a string is a valid SkipReason enum value
func validateSkipReason(fl validator.FieldLevel) bool {
	return ValidateSkipReason(fl.Field().String()) == nil
}

// ValidateTimeOfDay validates a single "HH:MM" time-of-day value. The
// scheduling core assumes well-formed values, so every input path runs
// through this check first.
func ValidateTimeOfDay(value string) error {
	if !hhmmPattern.MatchString(value) {
		return fmt.Errorf("invalid time of day: %q (must be zero-padded \"HH:MM\", 00:00-23:59)", value)
	}
	return nil
}

// ValidateTimes validates a medication's full time-of-day list
func ValidateTimes(times []string) error {
	if len(times) == 0 {
		return fmt.Errorf("at least one dose time is required")
	}
	for _, t := range times {
		if err := ValidateTimeOfDay(t); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSkipReason validates a SkipReason string value
func ValidateSkipReason(value string) error {
	switch models.SkipReason(value) {
	case models.SkipReasonForgot, models.SkipReasonSideEffects, models.SkipReasonFeelingBetter,
		models.SkipReasonRanOut, models.SkipReasonOther:
		return nil
	default:
		return fmt.Errorf("invalid skip reason: %s (must be 'forgot', 'side_effects', 'feeling_better', 'ran_out', or 'other')", value)
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
