package ooi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Separator splits the type tag from the natural key, and the natural key
// into its tokens.
const Separator = "|"

// ErrMalformedReference is matched by every MalformedReferenceError.
var ErrMalformedReference = errors.New("malformed reference")

// typePattern matches a valid object type tag such as "Hostname" or "IPAddressV4".
var typePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// MalformedReferenceError is returned by Parse when the input does not match
// the canonical "<type>|<natural-key>" shape.
type MalformedReferenceError struct {
	Input  string
	Reason string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed reference %q: %s", e.Input, e.Reason)
}

// Is reports whether target is ErrMalformedReference.
func (e *MalformedReferenceError) Is(target error) bool {
	return target == ErrMalformedReference
}

// Reference identifies an OOI by its type tag and natural key.
// References are comparable and can be used as map keys.
//
// Example:
//
//	ref, err := ooi.Parse("Hostname|internet|example.com")
//	ref.Type()       // "Hostname"
//	ref.NaturalKey() // "internet|example.com"
type Reference struct {
	objectType string
	naturalKey string
}

// NewReference builds a Reference from its parts, validating both.
func NewReference(objectType, naturalKey string) (Reference, error) {
	return Parse(objectType + Separator + naturalKey)
}

// Parse parses the canonical string form of a reference.
func Parse(s string) (Reference, error) {
	objectType, naturalKey, found := strings.Cut(s, Separator)
	if !found {
		return Reference{}, &MalformedReferenceError{Input: s, Reason: "missing separator"}
	}
	if !typePattern.MatchString(objectType) {
		return Reference{}, &MalformedReferenceError{Input: s, Reason: "invalid object type"}
	}
	if naturalKey == "" {
		return Reference{}, &MalformedReferenceError{Input: s, Reason: "empty natural key"}
	}
	return Reference{objectType: objectType, naturalKey: naturalKey}, nil
}

// MustParse is like Parse but panics on malformed input.
// Intended for constants and tests.
func MustParse(s string) Reference {
	ref, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// Type returns the object type tag.
func (r Reference) Type() string {
	return r.objectType
}

// NaturalKey returns everything after the type tag.
func (r Reference) NaturalKey() string {
	return r.naturalKey
}

// Tokens splits the natural key on the separator.
func (r Reference) Tokens() []string {
	if r.naturalKey == "" {
		return nil
	}
	return strings.Split(r.naturalKey, Separator)
}

// IsZero reports whether r is the zero Reference.
func (r Reference) IsZero() bool {
	return r.objectType == "" && r.naturalKey == ""
}

// String returns the canonical form, which is also the primary key and
// the tree store key.
func (r Reference) String() string {
	if r.IsZero() {
		return ""
	}
	return r.objectType + Separator + r.naturalKey
}

// MarshalText implements encoding.TextMarshaler.
func (r Reference) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reference) UnmarshalText(text []byte) error {
	ref, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
