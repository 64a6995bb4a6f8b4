// Package ooi defines Objects of Interest (OOIs) and the value types that
// travel with them: references, scan profiles, reference trees, origins and
// listing pages.
//
// # References
//
// Every object is identified by a Reference, the pair of its type tag and
// natural key. The canonical string form "<type>|<natural-key>" is used as the
// wire identifier, the primary key and the key of a tree store:
//
//	ref, err := ooi.Parse("IPPort|internet|192.0.2.1|tcp|443")
//	if errors.Is(err, ooi.ErrMalformedReference) {
//	    // reject input
//	}
//
// # Object types
//
// Object types form a closed but extensible set of variants. Each variant is
// described statically by a TypeDescriptor that names its natural key fields,
// its relation fields, how to label it and which information id joins it to
// knowledge-base data. Descriptors live in a TypeRegistry; the package-level
// Registry() is pre-populated with BuiltinTypes:
//
//	desc, err := ooi.Registry().Lookup(ooi.TypeHostname)
//	desc.Relations // ["network", "dns_zone"]
//
// # Trees and origins
//
// A ReferenceTree is a bounded-depth subgraph whose Store always contains the
// root. An Origin records whether a fact was declared, observed or inferred.
package ooi
