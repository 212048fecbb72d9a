package ir

// Version constants for IR schema and engine.
const (
	// IRVersion is the canonical tree schema version.
	IRVersion = "1"

	// EngineVersion is the pgcheck engine version. Cached analyses written
	// by another version are ignored.
	EngineVersion = "0.1.0"
)
