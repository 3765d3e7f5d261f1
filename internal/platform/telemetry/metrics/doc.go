// Package metrics provides operational metrics collection.
//
// # Metric Categories
//
//   - HTTP: request counts and latency by route and status
//   - Runs: resolved commands by result kind and run duration
//   - Login: captcha outcomes and completed logins by method
//   - Pages: live page instances held in memory
//
// # Integration
//
// Metrics live on a private Prometheus registry so tests and multiple
// servers in one process do not collide. Handler exposes the registry in the
// Prometheus text format for scraping.
package metrics
