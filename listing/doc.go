// Package listing pages through large object listings without loading them.
//
// A List maps Count, Get and Slice onto single window requests against the
// graph connector, so rendering page n of a listing costs one request no
// matter how large the collection is.
package listing
