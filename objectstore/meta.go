package objectstore

import (
	"fmt"

	"github.com/zero-day-ai/inventory/wire"
)

// NormalizerMeta is the metadata document of one normalizer run, kept as the
// raw JSON object it was served as.
type NormalizerMeta map[string]any

// BoefjeID returns the id of the boefje whose output the normalizer ran on,
// found at boefje_meta.boefje.id.
func (m NormalizerMeta) BoefjeID() (string, error) {
	v, err := wire.Path(m, "boefje_meta", "boefje", "id")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMeta, err)
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: boefje id is not a string", ErrMalformedMeta)
	}
	return id, nil
}

// NormalizerID returns normalizer.id, or "" when absent.
func (m NormalizerMeta) NormalizerID() string {
	return wire.String(wire.Map(m, "normalizer"), "id", "")
}
