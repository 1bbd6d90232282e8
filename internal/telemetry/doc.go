// Package telemetry provides OpenTelemetry initialization and helpers
// for tracing, logs and metrics across the Cortex Compose server and worker.
//
// The package configures OTLP HTTP export, with support for Grafana Cloud
// style base paths and local collectors over plain HTTP.
package telemetry
