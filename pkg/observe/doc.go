// Package observe provides router.Observer implementations: Prometheus
// metrics, OpenTelemetry spans and structured logging. Observers attach
// through router.WithObserver and can be combined freely.
package observe
