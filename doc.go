// Package inventory reads Objects of Interest (OOIs) from a knowledge-graph
// service and explains where they came from.
//
// The library is organized around a few concepts:
//
//   - References: "<type>|<natural-key>" identifiers (package ooi)
//   - Connector: the per-organization graph API (package connector)
//   - Listings: lazily paged type-filtered collections (package listing)
//   - Trees: bounded-depth subgraphs around one object (package resolver)
//   - Provenance: declarations, observations and inferences, enriched with
//     normalizer metadata and plugin descriptors (package provenance)
//   - Properties: the scalar view of an object merged with knowledge-base
//     data (package properties)
//
// # Getting Started
//
// Open a Session from a configuration file:
//
//	cfg, err := config.Load("inventory.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	session, err := inventory.Open(ctx, cfg, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inventory.CloseWithLog(session, nil, "session")
//
//	obj, err := session.Lookup(ctx, "Hostname|internet|example.com", time.Now())
//
// Sessions can also be assembled by hand with functional options, which is
// how tests replace the remote services:
//
//	session := inventory.New(
//		inventory.WithOrganization(&inventory.Organization{Code: "acme"}),
//		inventory.WithConnector(conn),
//	)
//
// # Error Handling
//
// Session operations return *Error values carrying a Kind:
//
//	obj, err := session.Lookup(ctx, pk, validTime)
//	switch inventory.KindOf(err) {
//	case inventory.KindNotFound:
//		// show a "not found" page
//	case inventory.KindConfiguration:
//		// organization or connector missing
//	}
//
// Package sentinels stay reachable through errors.Is, for example
// connector.ErrNotFound or properties.ErrMissingField.
//
// Provenance is the exception: Origins degrades instead of failing once
// the session is configured, and logs what it had to skip.
package inventory
