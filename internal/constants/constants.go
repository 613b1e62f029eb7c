package constants

import "time"

// SubscribeAllTopics is the universal wildcard subscription. The broker
// excludes $SYS topics from it, which is the intended scope.
const SubscribeAllTopics = "#"

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 1000
)

const (
	ShutdownTimeout    = 5 * time.Second
	StoreAppendTimeout = 10 * time.Second
	DisconnectQuiesce  = 250 * time.Millisecond
)

const (
	// LogPayloadTruncateLen bounds payload text in debug logs.
	LogPayloadTruncateLen = 100
	// DisplayPayloadTruncateLen bounds payload text in CLI output.
	DisplayPayloadTruncateLen = 80
)

const (
	DefaultFloodWindow    = 5 * time.Second
	DefaultFloodThreshold = 10
	DefaultFloodCooldown  = 60 * time.Second
)
