package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors maps a field name to a human readable message.
//
// It is the structured payload returned to API callers when a song cannot be saved.
type ValidationErrors map[string]string

// Add records msg for field, keeping the first message if one already exists.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Err returns v as an error, or nil when no field failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s %s", f, v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

const (
	msgBlank   = "can't be blank"
	msgInvalid = "is invalid"
)

func msgTooLong(max int) string {
	return fmt.Sprintf("is too long (maximum is %d characters)", max)
}

func checkLength(errs ValidationErrors, field, value string, max int) {
	if len([]rune(value)) > max {
		errs.Add(field, msgTooLong(max))
	}
}
