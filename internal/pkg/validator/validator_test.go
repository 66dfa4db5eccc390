package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"manager@carehome.co.uk", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2026-01-11", "2024-02-29"}
	invalid := []string{"2026-13-01", "2026-01-32", "2025-02-29", "2026/01/01", "11-01-2026", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidTime(t *testing.T) {
	valid := []string{"08:00", "20:00", "23:59", "00:00", "07:30:00"}
	invalid := []string{"24:00", "8", "08:60", "8am", "", "—"}
	for _, s := range valid {
		if !IsValidTime(s) {
			t.Errorf("IsValidTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidTime(s) {
			t.Errorf("IsValidTime(%q) = true, want false", s)
		}
	}
}

func TestParseYear(t *testing.T) {
	if y, ok := ParseYear("2026"); !ok || y != 2026 {
		t.Errorf("ParseYear(2026) = %d, %v", y, ok)
	}
	for _, s := range []string{"26", "20x6", "", "1066", "20266"} {
		if _, ok := ParseYear(s); ok {
			t.Errorf("ParseYear(%q) = ok, want failure", s)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "start_date", Message: "must be YYYY-MM-DD"},
		{Field: "end_date", Message: "must not be before start_date"},
	}
	want := "start_date: must be YYYY-MM-DD; end_date: must not be before start_date"
	if errs.Error() != want {
		t.Errorf("Error() = %q, want %q", errs.Error(), want)
	}
	if m := errs.ToMap(); len(m) != 2 || m["end_date"] == "" {
		t.Errorf("ToMap() = %v", m)
	}
}
