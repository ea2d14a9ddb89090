// Package metric provides Prometheus metrics plumbing for savecore.
//
// Components own their collectors and register them through a shared
// registry (see the RegisterMetrics methods on the slot and sync
// managers). This package builds that registry, adds the runtime
// collectors, and serves the scrape endpoint.
package metric
