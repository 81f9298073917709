// Package contact implements the contact form: field validation and the
// submission lifecycle around a pluggable Sender.
package contact

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field names one input of the contact form.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// AllFields lists the form fields in display and validation order.
var AllFields = []Field{FieldName, FieldEmail, FieldSubject, FieldMessage}

// ErrUnknownField is returned when a field name is not one of AllFields.
var ErrUnknownField = errors.New("unknown contact form field")

// ParseField returns the Field for s.
func ParseField(s string) (Field, error) {
	for _, f := range AllFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// Fields holds the raw form values.
type Fields struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Get returns the value of f, or "" for an unknown field.
func (v Fields) Get(f Field) string {
	switch f {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldSubject:
		return v.Subject
	case FieldMessage:
		return v.Message
	}
	return ""
}

// Set assigns value to f.
func (v *Fields) Set(f Field, value string) error {
	switch f {
	case FieldName:
		v.Name = value
	case FieldEmail:
		v.Email = value
	case FieldSubject:
		v.Subject = value
	case FieldMessage:
		v.Message = value
	default:
		return ErrUnknownField
	}
	return nil
}

// ToMessage converts the fields into the value handed to a Sender.
func (v Fields) ToMessage() Message {
	return Message{Name: v.Name, Email: v.Email, Subject: v.Subject, Message: v.Message}
}

// Errors maps each failing field to its message. Passing fields are absent.
type Errors map[Field]string

// emailRe is a loose shape check, not an RFC 5322 grammar.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type lengthRule struct {
	field    Field
	label    string
	minRunes int
}

var lengthRules = []lengthRule{
	{field: FieldName, label: "Name", minRunes: 2},
	{field: FieldSubject, label: "Subject", minRunes: 5},
	{field: FieldMessage, label: "Message", minRunes: 10},
}

// Validate checks v and returns one message per failing field.
func Validate(v Fields) Errors {
	errs := Errors{}
	for _, r := range lengthRules {
		if msg := checkLength(v.Get(r.field), r); msg != "" {
			errs[r.field] = msg
		}
	}
	switch {
	case strings.TrimSpace(v.Email) == "":
		errs[FieldEmail] = "Email is required"
	case !emailRe.MatchString(v.Email):
		errs[FieldEmail] = "Please enter a valid email"
	}
	return errs
}

func checkLength(value string, r lengthRule) string {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return r.label + " is required"
	case utf8.RuneCountInString(trimmed) < r.minRunes:
		return r.label + " must be at least " + strconv.Itoa(r.minRunes) + " characters"
	}
	return ""
}
