// Package validator validates and normalizes entities extracted by the
// intent classifier before they are handed to a workflow or the backend
// client.
package validator

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Outcome is the result of validating one entity.
type Outcome string

const (
	Valid             Outcome = "valid"
	Invalid           Outcome = "invalid"
	NeedsConfirmation Outcome = "needs_confirmation"
)

// Result carries the outcome of validating a single value.
type Result struct {
	Outcome    Outcome
	Normalized string
	Error      string
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[6-9]\d{9}$`),
	regexp.MustCompile(`^0\d{10}$`),
	regexp.MustCompile(`^91\d{10}$`),
	regexp.MustCompile(`^\+91\d{10}$`),
}

var phoneStrip = regexp.MustCompile(`[\s\-()+]`)

// ValidatePhone strips spaces/dashes/parens/plus, matches against the
// accepted Indian mobile-number shapes, and normalizes to exactly 10
// digits.
func ValidatePhone(phone string) Result {
	if phone == "" {
		return Result{Outcome: Invalid, Error: "Phone number is required"}
	}

	cleaned := phoneStrip.ReplaceAllString(phone, "")

	for _, pat := range phonePatterns {
		if !pat.MatchString(cleaned) {
			continue
		}
		var normalized string
		switch {
		case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
			normalized = cleaned[2:]
		case len(cleaned) == 11 && strings.HasPrefix(cleaned, "0"):
			normalized = cleaned[1:]
		case len(cleaned) == 10:
			normalized = cleaned
		default:
			continue
		}
		return Result{Outcome: Valid, Normalized: normalized}
	}

	return Result{Outcome: Invalid, Error: "Please provide a valid 10-digit mobile number"}
}

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"02 Jan 2006",
	"02 January 2006",
	"January 02, 2006",
	"02-01-06",
	"02/01/06",
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// DateOptions configures ValidateDate's acceptable range.
type DateOptions struct {
	AllowPast     bool
	MaxFutureDays int // 0 means unbounded
}

// ValidateDate resolves relative tokens, weekday names, and a fixed list
// of layouts, normalizing to ISO YYYY-MM-DD. now is injected for
// testability.
func ValidateDate(dateStr string, opts DateOptions, now time.Time) Result {
	if dateStr == "" {
		return Result{Outcome: Invalid, Error: "Date is required"}
	}

	s := strings.ToLower(strings.TrimSpace(dateStr))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	relative := []struct {
		keyword string
		date    time.Time
	}{
		{"day after tomorrow", today.AddDate(0, 0, 2)},
		{"tomorrow", today.AddDate(0, 0, 1)},
		{"next week", today.AddDate(0, 0, 7)},
		{"today", today},
	}
	for _, r := range relative {
		if strings.Contains(s, r.keyword) {
			return Result{Outcome: Valid, Normalized: r.date.Format("2006-01-02")}
		}
	}

	for name, wd := range weekdayNames {
		if !strings.Contains(s, name) {
			continue
		}
		daysAhead := int(wd-today.Weekday()+7) % 7
		if daysAhead <= 0 {
			daysAhead += 7
		}
		target := today.AddDate(0, 0, daysAhead)
		return Result{Outcome: Valid, Normalized: target.Format("2006-01-02")}
	}

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, dateStr)
		if err != nil {
			continue
		}
		parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, today.Location())

		if !opts.AllowPast && parsed.Before(today) {
			return Result{Outcome: Invalid, Error: "Date cannot be in the past"}
		}
		if opts.MaxFutureDays > 0 {
			diffDays := int(parsed.Sub(today).Hours() / 24)
			if diffDays > opts.MaxFutureDays {
				return Result{Outcome: Invalid, Error: fmt.Sprintf("Date cannot be more than %d days in the future", opts.MaxFutureDays)}
			}
		}
		return Result{Outcome: Valid, Normalized: parsed.Format("2006-01-02")}
	}

	return Result{Outcome: Invalid, Error: "Could not understand the date. Please say it as day, month, year"}
}

// ValidateGender accepts a fixed synonym set and normalizes to
// Male/Female/Other.
func ValidateGender(gender string) Result {
	if gender == "" {
		return Result{Outcome: Invalid, Error: "Gender is required"}
	}
	g := strings.ToLower(strings.TrimSpace(gender))
	switch g {
	case "male", "m", "man", "boy":
		return Result{Outcome: Valid, Normalized: "Male"}
	case "female", "f", "woman", "girl":
		return Result{Outcome: Valid, Normalized: "Female"}
	case "other", "o":
		return Result{Outcome: Valid, Normalized: "Other"}
	}
	return Result{Outcome: Invalid, Error: "Please specify Male, Female, or Other"}
}

var nameCharPattern = regexp.MustCompile(`^[A-Za-z\s.\-']+$`)

// ValidateName collapses whitespace, title-cases, and flags unusual
// characters for confirmation rather than rejecting outright.
func ValidateName(name string) Result {
	if name == "" {
		return Result{Outcome: Invalid, Error: "Name is required"}
	}

	cleaned := titleCase(strings.Join(strings.Fields(strings.TrimSpace(name)), " "))

	if len(cleaned) < 2 {
		return Result{Outcome: Invalid, Error: "Name seems too short"}
	}
	if !nameCharPattern.MatchString(cleaned) {
		return Result{Outcome: NeedsConfirmation, Normalized: cleaned, Error: "Name contains unusual characters. Is this correct?"}
	}
	return Result{Outcome: Valid, Normalized: cleaned}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r[0]) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

// DepartmentAliases maps common caller phrasing to canonical department
// names. Matched by substring, longest alias first, so a longer alias
// wins over a shorter one it contains ("heart" before "ear").
var DepartmentAliases = map[string]string{
	"heart":     "Cardiology",
	"cardio":    "Cardiology",
	"cardiac":   "Cardiology",
	"ortho":     "Orthopedics",
	"bone":      "Orthopedics",
	"bones":     "Orthopedics",
	"fracture":  "Orthopedics",
	"general":   "General Medicine",
	"medicine":  "General Medicine",
	"fever":     "General Medicine",
	"cold":      "General Medicine",
	"ent":       "ENT",
	"ear":       "ENT",
	"nose":      "ENT",
	"throat":    "ENT",
	"eye":       "Ophthalmology",
	"eyes":      "Ophthalmology",
	"skin":      "Dermatology",
	"derma":     "Dermatology",
	"neuro":     "Neurology",
	"brain":     "Neurology",
	"nerve":     "Neurology",
	"child":     "Pediatrics",
	"children":  "Pediatrics",
	"kids":      "Pediatrics",
	"baby":      "Pediatrics",
	"gynec":     "Gynecology",
	"women":     "Gynecology",
	"pregnancy": "Gynecology",
	"dental":    "Dentistry",
	"teeth":     "Dentistry",
	"tooth":     "Dentistry",
}

// departmentAliasKeys lists the DepartmentAliases keys longest first,
// ties broken alphabetically, for a deterministic match order.
var departmentAliasKeys = func() []string {
	keys := slices.Sorted(maps.Keys(DepartmentAliases))
	slices.SortStableFunc(keys, func(a, b string) int { return len(b) - len(a) })
	return keys
}()

// StandardDepartments is the canonical department name list used as a
// fallback substring match, and to present hints when no alias hits.
var StandardDepartments = []string{
	"General Medicine", "Cardiology", "Orthopedics", "ENT",
	"Ophthalmology", "Dermatology", "Neurology", "Pediatrics",
	"Gynecology", "Dentistry", "Psychiatry", "Urology",
}

// ValidateDepartment resolves free-text department phrasing to a
// canonical name via the alias map, then a loose substring match against
// the standard list.
func ValidateDepartment(department string) Result {
	if department == "" {
		return Result{Outcome: Invalid, Error: "Department is required"}
	}

	deptLower := strings.ToLower(strings.TrimSpace(department))

	for _, alias := range departmentAliasKeys {
		if strings.Contains(deptLower, alias) {
			return Result{Outcome: Valid, Normalized: DepartmentAliases[alias]}
		}
	}

	for _, dept := range StandardDepartments {
		dl := strings.ToLower(dept)
		if strings.Contains(dl, deptLower) || strings.Contains(deptLower, dl) {
			return Result{Outcome: Valid, Normalized: dept}
		}
	}

	return Result{
		Outcome:    NeedsConfirmation,
		Normalized: titleCase(department),
		Error:      fmt.Sprintf("'%s' is not a recognized department. Did you mean one of our standard departments?", department),
	}
}

var patientIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^HIS-\d{4}-\d{3,6}$`),
	regexp.MustCompile(`^P\d{6,10}$`),
	regexp.MustCompile(`^[A-Z]{2,4}\d{6,10}$`),
}

// ValidatePatientID accepts the known HIS identifier shapes or a plain
// 4-12 digit numeric id.
func ValidatePatientID(patientID string) Result {
	if patientID == "" {
		return Result{Outcome: Invalid, Error: "Patient ID is required"}
	}

	cleaned := strings.ToUpper(strings.TrimSpace(patientID))

	for _, pat := range patientIDPatterns {
		if pat.MatchString(cleaned) {
			return Result{Outcome: Valid, Normalized: cleaned}
		}
	}

	if _, err := strconv.Atoi(cleaned); err == nil && len(cleaned) >= 4 && len(cleaned) <= 12 {
		return Result{Outcome: Valid, Normalized: cleaned}
	}

	return Result{Outcome: NeedsConfirmation, Normalized: cleaned, Error: "This doesn't look like a standard patient ID. Could you verify?"}
}

// Entry is one entity's validation outcome inside a ValidateAll batch.
type Entry struct {
	Result   Result
	Original any
}

// ValidateAll dispatches every recognized key in entities to its
// validator; unknown keys pass through untouched (absent from the result).
func ValidateAll(entities map[string]any, now time.Time) map[string]Entry {
	results := make(map[string]Entry)

	for key, value := range entities {
		str, ok := value.(string)
		if !ok || str == "" {
			continue
		}

		var res Result
		switch key {
		case "phone":
			res = ValidatePhone(str)
		case "date_of_birth":
			res = ValidateDate(str, DateOptions{AllowPast: true, MaxFutureDays: 0}, now)
		case "preferred_date":
			res = ValidateDate(str, DateOptions{AllowPast: false, MaxFutureDays: 90}, now)
		case "gender":
			res = ValidateGender(str)
		case "first_name", "last_name":
			res = ValidateName(str)
		case "department":
			res = ValidateDepartment(str)
		case "patient_id":
			res = ValidatePatientID(str)
		default:
			continue
		}

		results[key] = Entry{Result: res, Original: value}
	}

	return results
}
