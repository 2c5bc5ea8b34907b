// Package infra contains technical adapters: the open data station client,
// MQTT alerting, metrics sinks, logging and error reporting. These packages
// depend only on the interfaces defined in the core packages.
package infra
