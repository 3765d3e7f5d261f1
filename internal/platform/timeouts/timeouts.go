// Package timeouts defines shared timeout constants used by the simulator
// binaries.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// PagePruneInterval is how often idle page instances are swept.
const PagePruneInterval = time.Minute
