// Package health probes the services the inventory depends on.
//
// Each remote client (graph connector, object store, plugin catalog) exposes
// Health(ctx) error. Run wraps them in named checks with a timeout and folds
// the outcomes into a Report:
//
//	report := health.Run(ctx,
//	    health.Check{Name: "graph", Target: conn},
//	    health.Check{Name: "objectstore", Target: store},
//	    health.Check{Name: "knowledge-cache", Target: health.PingFunc(cache.Ping), Optional: true},
//	)
//	if report.Overall.IsUnhealthy() {
//	    ...
//	}
//
// Combine follows a fixed priority: unhealthy beats degraded, degraded beats
// healthy. A failing optional check only degrades the report.
package health
