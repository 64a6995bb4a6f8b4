// Package connector provides typed access to the knowledge-graph service.
//
// Connector is the interface consumed by the rest of the module; APIConnector
// implements it over HTTP/JSON through a transport.Client whose base URL
// points at the graph service. All calls are scoped to one organization and
// take the valid time at which the graph is read.
//
// Missing objects are reported as *NotFoundError, which callers can detect
// with IsNotFound. Every other remote failure is returned as the transport
// error it was raised as.
package connector
