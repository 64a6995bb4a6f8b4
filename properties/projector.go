// Package properties computes the scalar property set shown for an object.
package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/zero-day-ai/inventory/knowledge"
	"github.com/zero-day-ai/inventory/ooi"
)

// ErrMissingField marks an object lacking a field every object must carry.
var ErrMissingField = errors.New("missing field")

// MissingFieldError names the absent field. It matches ErrMissingField.
type MissingFieldError struct {
	Reference ooi.Reference
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %v %q", e.Reference, ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Projector merges an object's own scalar fields with knowledge-base data.
type Projector struct {
	source knowledge.Source
}

// New returns a projector. A nil source disables knowledge-base merging.
func New(source knowledge.Source) *Projector {
	return &Projector{source: source}
}

// Project returns the scalar properties of entity.
//
// Relation fields are dropped. Knowledge-base data is derived from the
// objects of tree (which may be nil) and the entry for entity's information
// id is merged in, overriding the entity's own fields but never adding a
// relation field back. scan_profile and
// primary_key are removed last; an entity without either of them yields a
// *MissingFieldError.
func (p *Projector) Project(ctx context.Context, entity *ooi.Object, tree *ooi.ReferenceTree) (map[string]any, error) {
	desc := entity.Descriptor()

	props := make(map[string]any)
	for k, v := range entity.Fields() {
		if desc.IsRelation(k) {
			continue
		}
		props[k] = v
	}

	if p.source != nil && tree != nil {
		kb, err := knowledge.ForObjects(ctx, p.source, tree.Objects())
		if err != nil {
			return nil, err
		}
		for k, v := range kb[entity.InformationID()] {
			if desc.IsRelation(k) {
				continue
			}
			props[k] = v
		}
	}

	for _, field := range []string{ooi.FieldScanProfile, ooi.FieldPrimaryKey} {
		if _, ok := props[field]; !ok {
			return nil, &MissingFieldError{Reference: entity.Reference(), Field: field}
		}
		delete(props, field)
	}
	return props, nil
}
