package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	minNameLength    = 2
	maxNameLength    = 100
	minMessageLength = 10
	maxMessageLength = 1000
)

const (
	ViolationName    = "Name must be between 2 and 100 characters"
	ViolationEmail   = "Please provide a valid email address"
	ViolationMessage = "Message must be between 10 and 1000 characters"
	ViolationMarkup  = "Invalid characters detected in submission"
)

// validate is safe for concurrent use once built.
var validate = validator.New()

// Markup patterns are a best-effort filter against obvious script injection.
// They do not replace escaping on output.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b.*?</script\s*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
}

// Validate checks a candidate submission and returns every violated rule in
// the order name, email, message, markup. An empty result means acceptable.
func Validate(name, email, message string) []string {
	violations := []string{}

	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < minNameLength || n > maxNameLength {
		violations = append(violations, ViolationName)
	}

	if email == "" || validate.Var(email, "email") != nil {
		violations = append(violations, ViolationEmail)
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(message)); n < minMessageLength || n > maxMessageLength {
		violations = append(violations, ViolationMessage)
	}

	if containsMarkup(name + " " + email + " " + message) {
		violations = append(violations, ViolationMarkup)
	}

	return violations
}

func containsMarkup(text string) bool {
	for _, p := range markupPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
