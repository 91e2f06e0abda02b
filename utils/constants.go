// File: utils/constants.go
package utils

import "time"

// NotifyCachePrefix is the prefix used for per-user recent notification keys.
const NotifyCachePrefix = "notify:"

// NotifyCacheTTL is the time-to-live for recent notification entries.
const NotifyCacheTTL = 24 * time.Hour

// NotifyCacheLimit caps how many recent notifications are retained per user.
const NotifyCacheLimit = 50
