package ast

import "regexp"

// CourseCodePattern is the canonical course-code grammar: two-digit subject
// group, three-digit department, three-digit course number.
const CourseCodePattern = `^\d{2}:\d{3}:\d{3}$`

var (
	courseCodeRe = regexp.MustCompile(CourseCodePattern)

	// embeddedCourseCodeRe finds a canonical code inside free-form text such
	// as "14:540:100 Intro to Engineering".
	embeddedCourseCodeRe = regexp.MustCompile(`\b\d{2}:\d{3}:\d{3}\b`)
)

// IsCanonicalCourseCode returns true if code matches the canonical grammar exactly.
func IsCanonicalCourseCode(code string) bool {
	return courseCodeRe.MatchString(code)
}

// ExtractCanonicalCourseCode returns the first canonical course code found in
// raw, and false when there is none.
func ExtractCanonicalCourseCode(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	match := embeddedCourseCodeRe.FindString(raw)
	if match == "" {
		return "", false
	}
	return match, true
}
