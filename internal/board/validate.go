// ABOUTME: Pure input validation for message fields
// ABOUTME: Trims and bound-checks username/title/body, reporting all violations together

package board

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field length bounds, counted in characters after trimming surrounding
// whitespace. These match the limits the browser client enforces.
const (
	UsernameMin = 2
	UsernameMax = 24
	TitleMin    = 1
	TitleMax    = 60
	BodyMin     = 1
	BodyMax     = 280
)

var validate = validator.New()

// Fields holds normalized (trimmed) message field values. The validate tags
// count runes, not bytes, so multibyte input is bounded by character count.
type Fields struct {
	Username string `validate:"min=2,max=24"`
	Title    string `validate:"min=1,max=60"`
	Body     string `validate:"min=1,max=280"`
}

// fieldBounds maps struct field names to their wire names and bounds for
// building violation messages.
var fieldBounds = map[string]struct {
	name     string
	min, max int
}{
	"Username": {"username", UsernameMin, UsernameMax},
	"Title":    {"title", TitleMin, TitleMax},
	"Body":     {"body", BodyMin, BodyMax},
}

// ValidationError reports every field that failed its bounds, keyed by wire
// field name with a human-readable message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// ValidateFields trims and bound-checks all three message fields. It returns
// the normalized values, or a ValidationError naming every violated field.
func ValidateFields(username, title, body string) (Fields, *ValidationError) {
	f := Fields{
		Username: strings.TrimSpace(username),
		Title:    strings.TrimSpace(title),
		Body:     strings.TrimSpace(body),
	}
	return f, checkBounds(validate.Struct(f))
}

// ValidateEditFields trims and bound-checks title and body only. Username is
// immutable after creation and is not validated on edit.
func ValidateEditFields(title, body string) (Fields, *ValidationError) {
	f := Fields{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
	}
	return f, checkBounds(validate.StructPartial(f, "Title", "Body"))
}

// checkBounds converts validator errors into a ValidationError covering every
// failed field.
func checkBounds(err error) *ValidationError {
	if err == nil {
		return nil
	}

	violations := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		b, ok := fieldBounds[fe.StructField()]
		if !ok {
			continue
		}
		violations[b.name] = fmt.Sprintf("%s must be between %d and %d characters", b.name, b.min, b.max)
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Fields: violations}
}
