package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC) // a Saturday

func TestValidatePhoneNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9876543210", "9876543210"},
		{"09876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"+919876543210", "9876543210"},
		{"98765-43210", "9876543210"},
	}
	for _, c := range cases {
		res := ValidatePhone(c.in)
		require.Equal(t, Valid, res.Outcome, "input %q", c.in)
		assert.Equal(t, c.want, res.Normalized)
	}
}

func TestValidatePhoneRejectsInvalid(t *testing.T) {
	res := ValidatePhone("12345")
	assert.Equal(t, Invalid, res.Outcome)
}

func TestValidatePhoneIsIdempotent(t *testing.T) {
	first := ValidatePhone("09876543210")
	require.Equal(t, Valid, first.Outcome)
	second := ValidatePhone(first.Normalized)
	require.Equal(t, Valid, second.Outcome)
	assert.Equal(t, first.Normalized, second.Normalized)
}

func TestValidateDateRelativeTokens(t *testing.T) {
	res := ValidateDate("tomorrow", DateOptions{AllowPast: false, MaxFutureDays: 90}, fixedNow)
	require.Equal(t, Valid, res.Outcome)
	assert.Equal(t, "2026-08-02", res.Normalized)
}

func TestValidateDateWeekdayTodayResolvesToNextWeek(t *testing.T) {
	// fixedNow is a Saturday.
	res := ValidateDate("saturday", DateOptions{AllowPast: false, MaxFutureDays: 90}, fixedNow)
	require.Equal(t, Valid, res.Outcome)
	assert.Equal(t, "2026-08-08", res.Normalized, "today's weekday must resolve to +7, never +0")
}

func TestValidateDateISORoundTrips(t *testing.T) {
	res := ValidateDate("2026-09-15", DateOptions{AllowPast: false, MaxFutureDays: 90}, fixedNow)
	require.Equal(t, Valid, res.Outcome)
	again := ValidateDate(res.Normalized, DateOptions{AllowPast: false, MaxFutureDays: 90}, fixedNow)
	require.Equal(t, Valid, again.Outcome)
	assert.Equal(t, res.Normalized, again.Normalized)
}

func TestValidateDateRejectsTooFarInFuture(t *testing.T) {
	res := ValidateDate("2027-06-01", DateOptions{AllowPast: false, MaxFutureDays: 90}, fixedNow)
	assert.Equal(t, Invalid, res.Outcome)
}

func TestValidateGender(t *testing.T) {
	assert.Equal(t, "Male", ValidateGender("m").Normalized)
	assert.Equal(t, "Female", ValidateGender("Woman").Normalized)
	assert.Equal(t, Invalid, ValidateGender("unsure").Outcome)
}

func TestValidateNameFlagsUnusualCharacters(t *testing.T) {
	res := ValidateName("John123")
	assert.Equal(t, NeedsConfirmation, res.Outcome)

	res2 := ValidateName("  mary   jane  ")
	assert.Equal(t, Valid, res2.Outcome)
	assert.Equal(t, "Mary Jane", res2.Normalized)
}

func TestValidateDepartmentAlias(t *testing.T) {
	res := ValidateDepartment("my heart hurts")
	require.Equal(t, Valid, res.Outcome)
	assert.Equal(t, "Cardiology", res.Normalized)
}

func TestValidateDepartmentUnknownNeedsConfirmation(t *testing.T) {
	res := ValidateDepartment("astrology")
	assert.Equal(t, NeedsConfirmation, res.Outcome)
}

func TestValidatePatientID(t *testing.T) {
	assert.Equal(t, Valid, ValidatePatientID("HIS-2024-001").Outcome)
	assert.Equal(t, Valid, ValidatePatientID("P123456").Outcome)
	assert.Equal(t, Valid, ValidatePatientID("12345").Outcome)
	assert.Equal(t, NeedsConfirmation, ValidatePatientID("abc").Outcome)
}

func TestValidateAllDispatchesKnownKeysOnly(t *testing.T) {
	results := ValidateAll(map[string]any{
		"phone":      "9876543210",
		"department": "cardio",
		"unknown":    "passthrough",
	}, fixedNow)

	require.Contains(t, results, "phone")
	require.Contains(t, results, "department")
	assert.NotContains(t, results, "unknown")
}
