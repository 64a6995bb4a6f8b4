package ooi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zero-day-ai/inventory/wire"
)

// ErrInvalidObject indicates that an object could not be decoded from the wire.
var ErrInvalidObject = errors.New("invalid object")

// Object is a single OOI as returned by the graph service.
//
// The wire representation is a flat JSON object carrying object_type,
// primary_key, scan_profile and the type-specific fields. Object keeps that
// map as-is so that every field round-trips, and derives its Reference from
// the primary key. Relation fields are identified by the type descriptor.
type Object struct {
	ref    Reference
	fields map[string]any
}

// NewObject creates an object with the given reference and fields.
// The fields map is copied; it is not required to contain primary_key.
func NewObject(ref Reference, fields map[string]any) *Object {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Object{ref: ref, fields: copied}
}

// Reference returns the object's reference.
func (o *Object) Reference() Reference {
	return o.ref
}

// PrimaryKey returns the canonical string form of the reference.
func (o *Object) PrimaryKey() string {
	return o.ref.String()
}

// Type returns the object type name.
func (o *Object) Type() string {
	return o.ref.Type()
}

// Descriptor returns the type descriptor from the global registry.
func (o *Object) Descriptor() TypeDescriptor {
	return describe(o.ref.Type())
}

// HumanReadable returns a display label for the object.
func (o *Object) HumanReadable() string {
	return o.Descriptor().label(o)
}

// InformationID returns the key used to join knowledge-base data.
func (o *Object) InformationID() string {
	return o.Descriptor().informationID(o)
}

// RelationFields returns the names of this object's relation fields.
func (o *Object) RelationFields() []string {
	relations := o.Descriptor().Relations
	out := make([]string, len(relations))
	copy(out, relations)
	return out
}

// Relations returns the references held by the object's relation fields.
// Unset or unparsable fields are omitted.
func (o *Object) Relations() map[string]Reference {
	out := make(map[string]Reference)
	for _, field := range o.Descriptor().Relations {
		if ref, ok := o.ReferenceField(field); ok {
			out[field] = ref
		}
	}
	return out
}

// Fields returns a copy of every field of the object, as received.
func (o *Object) Fields() map[string]any {
	out := make(map[string]any, len(o.fields))
	for k, v := range o.fields {
		out[k] = v
	}
	return out
}

// FieldNames returns the sorted field names.
func (o *Object) FieldNames() []string {
	names := make([]string, 0, len(o.fields))
	for k := range o.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Field returns the raw value of field, or nil.
func (o *Object) Field(field string) any {
	return o.fields[field]
}

// StringField returns field as a string, or "" if it is not a string.
func (o *Object) StringField(field string) string {
	return wire.String(o.fields, field, "")
}

// ReferenceField parses field as a reference.
func (o *Object) ReferenceField(field string) (Reference, bool) {
	s, ok := o.fields[field].(string)
	if !ok {
		return Reference{}, false
	}
	ref, err := Parse(s)
	if err != nil {
		return Reference{}, false
	}
	return ref, true
}

func (o *Object) referenceTail(field string) string {
	ref, ok := o.ReferenceField(field)
	if !ok {
		return o.StringField(field)
	}
	tokens := ref.Tokens()
	return tokens[len(tokens)-1]
}

// ScanProfile decodes the scan_profile field, if present and well-formed.
func (o *Object) ScanProfile() (ScanProfile, bool) {
	raw, ok := o.fields[FieldScanProfile]
	if !ok || raw == nil {
		return ScanProfile{}, false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return ScanProfile{}, false
	}
	var sp ScanProfile
	if err := json.Unmarshal(data, &sp); err != nil {
		return ScanProfile{}, false
	}
	return sp, true
}

// MarshalJSON encodes the object as its flat field map.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.fields)
}

// UnmarshalJSON decodes a flat object map. The primary_key field is required.
func (o *Object) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidObject, err)
	}

	pk, ok := fields[FieldPrimaryKey].(string)
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrInvalidObject, FieldPrimaryKey)
	}
	ref, err := Parse(pk)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidObject, err)
	}
	if t := wire.String(fields, FieldObjectType, ref.Type()); t != ref.Type() {
		return fmt.Errorf("%w: object_type %q does not match primary key %q", ErrInvalidObject, t, pk)
	}

	o.ref = ref
	o.fields = fields
	return nil
}

// ScanProfileType distinguishes how a scan level came about.
type ScanProfileType string

const (
	// ScanProfileDeclared is a level set explicitly by a user.
	ScanProfileDeclared ScanProfileType = "declared"

	// ScanProfileInherited is a level derived from neighbouring objects.
	ScanProfileInherited ScanProfileType = "inherited"

	// ScanProfileEmpty means no level has been set.
	ScanProfileEmpty ScanProfileType = "empty"
)

// ScanLevel is the clearance level for scanning an object. The graph service
// accepts L0 to L4.
type ScanLevel int

// Scan levels as understood by the graph service.
const (
	L0 ScanLevel = iota
	L1
	L2
	L3
	L4
)

// String returns "L<n>".
func (l ScanLevel) String() string {
	return fmt.Sprintf("L%d", int(l))
}

// ScanProfile is the scan level attached to an object.
type ScanProfile struct {
	Type       ScanProfileType `json:"scan_profile_type"`
	Reference  Reference       `json:"reference"`
	Level      ScanLevel       `json:"level"`
	DeclaredAt *time.Time      `json:"declared_at,omitempty"`
}

// NewDeclaredScanProfile returns a declared profile for ref at level.
func NewDeclaredScanProfile(ref Reference, level ScanLevel, at time.Time) ScanProfile {
	declaredAt := at.UTC()
	return ScanProfile{
		Type:       ScanProfileDeclared,
		Reference:  ref,
		Level:      level,
		DeclaredAt: &declaredAt,
	}
}
