package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// dueDateLayouts are the accepted due date formats, most specific last.
var dueDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDueDate parses an ISO date or timestamp.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date: %s", s)
}

// FieldError describes one rejected field.
type FieldError struct {
	Field string // JSON name
	Tag   string // failed rule
}

// ValidationError is returned when a request fails client-side validation.
// Nothing is sent to the server in that case.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fieldMessage(f))
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

var displayNames = map[string]string{
	"dueDate":  "due date",
	"userName": "username",
}

func fieldMessage(f FieldError) string {
	name := f.Field
	if d, ok := displayNames[name]; ok {
		name = d
	}
	switch f.Tag {
	case "required":
		return name + " required"
	case "email":
		return "invalid email: must be a valid address"
	case "isodate":
		return "invalid due date: expected YYYY-MM-DD"
	case "taskstatus":
		return "invalid status"
	default:
		return "invalid " + name
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseDueDate(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().Int()).Valid()
		})
		validate = v
	})
	return validate
}

// Validate checks a request struct and returns a *ValidationError listing
// every rejected field, or nil.
func Validate(req any) error {
	err := validatorInstance().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}
