// Package transport is the JSON-over-HTTP client shared by the graph,
// object store and plugin catalog connectors.
//
// A Client sends exactly one round trip per call. Failures are classified as
// *NetworkError, *StatusError or *DecodeError so that callers can map them to
// their own error kinds, and IsRequestError tells remote failures apart from
// local ones.
//
// Basic usage:
//
//	c, err := transport.New("graph", "http://octopoes:8000/acme",
//	    transport.WithTimeout(10*time.Second),
//	    transport.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//
//	var out map[string]any
//	err = c.Do(ctx, http.MethodGet, "/object", url.Values{"reference": {ref}}, &out)
package transport
