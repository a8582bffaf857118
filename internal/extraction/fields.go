package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// fieldRule pairs a pattern with the normalization applied to its
// submatches. Rules are evaluated in order, first match wins; a rule
// whose normalization rejects the match is skipped.
type fieldRule struct {
	pattern   *regexp.Regexp
	normalize func(match []string) (string, bool)
}

// Labels match case-insensitively, the captured name shape does not: two
// words, each starting uppercase followed by lowercase.
var patientNameRules = []fieldRule{
	{
		pattern:   regexp.MustCompile(`(?i:patient\s+name:)\s*([A-Z][a-z]+ [A-Z][a-z]+)`),
		normalize: firstSubmatch,
	},
	{
		pattern:   regexp.MustCompile(`(?i:name:)\s*([A-Z][a-z]+ [A-Z][a-z]+)`),
		normalize: firstSubmatch,
	},
}

// M/D/YYYY dates, 1-2 digit month and day, normalized to ISO 8601.
var dateOfBirthRules = []fieldRule{
	{
		pattern:   regexp.MustCompile(`(?i:date\s+of\s+birth:)\s*(\d{1,2})/(\d{1,2})/(\d{4})`),
		normalize: isoDate,
	},
	{
		pattern:   regexp.MustCompile(`(?i:dob:)\s*(\d{1,2})/(\d{1,2})/(\d{4})`),
		normalize: isoDate,
	},
	{
		pattern:   regexp.MustCompile(`(?i:born:)\s*(\d{1,2})/(\d{1,2})/(\d{4})`),
		normalize: isoDate,
	},
}

// ExtractPatientName pulls a patient name out of the full text. Absence
// of a match is a normal outcome, represented as nil.
func ExtractPatientName(fullText string) *string {
	return apply(patientNameRules, fullText)
}

// ExtractDateOfBirth pulls a date of birth out of the full text and
// returns it as a zero-padded YYYY-MM-DD string, or nil when no rule
// matches.
func ExtractDateOfBirth(fullText string) *string {
	return apply(dateOfBirthRules, fullText)
}

func apply(rules []fieldRule, fullText string) *string {
	for _, r := range rules {
		if match := r.pattern.FindStringSubmatch(fullText); match != nil {
			if value, ok := r.normalize(match); ok {
				return &value
			}
		}
	}
	return nil
}

func firstSubmatch(match []string) (string, bool) {
	return match[1], true
}

// isoDate rejects matches that are not real calendar dates, such as a
// 13th month or a 30th of February.
func isoDate(match []string) (string, bool) {
	month, _ := strconv.Atoi(match[1])
	day, _ := strconv.Atoi(match[2])
	value := fmt.Sprintf("%s-%02d-%02d", match[3], month, day)
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "", false
	}
	return value, true
}
