// Package validator collects field-level validation failures.
package validator

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Validator contains a map of validation errors
type Validator struct {
	Errors map[string]string
}

// New is a helper which creates a new validator instance with an empty errors map
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the errors maps does not contain any entries
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map (so long as no entry already exists for the given key)
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error message to the map only if a validation check is not 'ok'
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Err returns the collected failures as a single error, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &Error{Errors: maps.Clone(v.Errors)}
}

// PermittedValue is a generic function which returns true if a specific value is in a list of permitted values
func PermittedValue[T comparable](value T, permittedValues ...T) bool {
	return slices.Contains(permittedValues, value)
}

// Error reports every failed check, ordered by key.
type Error struct {
	Errors map[string]string
}

func (e *Error) Error() string {
	keys := slices.Sorted(maps.Keys(e.Errors))

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Errors[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
