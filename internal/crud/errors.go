package crud

import (
	"errors"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrValidation = crerr.New("validation failed")
	ErrNotFound   = crerr.New("resource not found")
	ErrNetwork    = crerr.New("network error")
	ErrServer     = crerr.New("server error")
)

// FieldViolation is one failed field constraint.
type FieldViolation struct {
	Field string
	Rule  string
	Param string
}

func (v FieldViolation) String() string {
	switch v.Rule {
	case "required":
		return v.Field + " is required"
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s characters", v.Field, v.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", v.Field, v.Param)
	case "unknown":
		return v.Field + " is not a known field"
	default:
		if v.Param != "" {
			return fmt.Sprintf("%s failed %s=%s", v.Field, v.Rule, v.Param)
		}
		return fmt.Sprintf("%s failed %s", v.Field, v.Rule)
	}
}

// ValidationError blocks a submission before any request is sent.
type ValidationError struct {
	Entity     string
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, ErrValidation.Error(), e.summary())
}

func (e *ValidationError) summary() string {
	parts := make([]string, 0, len(e.Violations))
	for _, violation := range e.Violations {
		parts = append(parts, violation.String())
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	kind       error
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s %s status=%d", e.kind.Error(), e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s status=%d body=%s", e.kind.Error(), e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return e.kind
}

// Message renders err for an operator. Validation errors keep only their
// violations and backend failures prefer the message of a problem body.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.summary()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		status := fmt.Sprintf("%s %s failed: status=%d", httpErr.Method, httpErr.Path, httpErr.StatusCode)
		if text := problemText(httpErr.Body); text != "" {
			return status + ": " + text
		}
		return status
	}
	return err.Error()
}

type problem struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// problemText pulls the readable part out of an error body. Bodies that are
// not a JSON problem come back as they are.
func problemText(body string) string {
	if body == "" {
		return ""
	}
	var p problem
	if err := wireAPI.UnmarshalFromString(body, &p); err != nil {
		return body
	}
	text := strings.TrimSpace(p.Message)
	if text == "" {
		text = strings.TrimSpace(p.Title)
	}
	if detail := strings.TrimSpace(p.Detail); detail != "" && detail != text {
		if text == "" {
			return detail
		}
		return text + " (" + detail + ")"
	}
	if text == "" {
		return body
	}
	return text
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
