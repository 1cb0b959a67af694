// Package lifecycle holds shared settings for component startup and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds start hooks (e.g. the initial database ping) and graceful shutdown.
const DefaultTimeout = 10 * time.Second
