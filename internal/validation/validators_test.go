package validation

import "testing"

func TestValidateTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"morning", "08:00", true},
		{"midnight", "00:00", true},
		{"last minute", "23:59", true},
		{"noon", "12:30", true},
		{"hour out of range", "24:00", false},
		{"minute out of range", "12:60", false},
		{"not zero padded", "8:00", false},
		{"with seconds", "08:00:00", false},
		{"empty", "", false},
		{"garbage", "morning", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateTimeOfDay(tt.value)
			if tt.valid && err != nil {
				t.Errorf("Expected %q to be valid, got %v", tt.value, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected %q to be invalid", tt.value)
			}
		})
	}
}

func TestValidateTimes(t *testing.T) {
	t.Parallel()

	if err := ValidateTimes(nil); err == nil {
		t.Error("Expected empty times list to be invalid")
	}
	if err := ValidateTimes([]string{"08:00", "20:00"}); err != nil {
		t.Errorf("Expected valid times list, got %v", err)
	}
	if err := ValidateTimes([]string{"08:00", "25:00"}); err == nil {
		t.Error("Expected list containing malformed time to be invalid")
	}
}

func TestValidateSkipReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"forgot", "forgot", true},
		{"side effects", "side_effects", true},
		{"feeling better", "feeling_better", true},
		{"ran out", "ran_out", true},
		{"other", "other", true},
		{"unknown", "on_vacation", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSkipReason(tt.value)
			if tt.valid && err != nil {
				t.Errorf("Expected %q to be valid, got %v", tt.value, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected %q to be invalid", tt.value)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  Ibuprofeno  ", "Ibuprofeno"},
		{"removes control characters", "Ibu\x00profeno", "Ibuprofeno"},
		{"keeps newline and tab", "line1\n\tline2", "line1\n\tline2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
