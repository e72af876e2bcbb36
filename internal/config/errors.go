package config

const (
	// Config errors
	ErrReadConfigFmt         = "failed to read config file: %w"
	ErrParseConfigFmt        = "failed to parse config file: %w"
	ErrUnknownBackendFmt     = "unknown store backend %q"
	ErrUnknownCompressionFmt = "unknown store compression %q"
	ErrUnknownThemeFmt       = "unknown ui theme %q"
	ErrEmptyBaseURL          = "remote.base_url must not be empty"

	// Store errors
	ErrInitializeDatabaseFmt = "failed to initialize database: %w"
)
