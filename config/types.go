package config

import "time"

// Duration is a time.Duration that unmarshals from a TOML string such as
// "6h" or "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// LoggingConfig controls console log output and the optional log file.
type LoggingConfig struct {
	// ConsoleLevel is one of debug, info, warn, error.
	ConsoleLevel string `toml:"console_level" validate:"omitempty,oneof=debug info warn error"`

	// FilePath, when set, duplicates log output into the named file.
	FilePath string `toml:"file_path"`
}

// APIConfig describes how to reach the LPP open-data API.
type APIConfig struct {
	BaseURL   string `toml:"base_api_url" validate:"required,url"`
	UserAgent string `toml:"user_agent" validate:"required"`

	// RequestsPerSecond paces outgoing requests; zero selects the client
	// default.
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"`

	// TreatClientErrorsAsPermanent stops retrying non-rate-limit 4xx
	// responses. Off by default: the API occasionally answers 4xx
	// transiently.
	TreatClientErrorsAsPermanent bool `toml:"treat_client_errors_as_permanent"`

	// CaptureRouteShapes additionally fetches each route's GeoJSON path
	// during the per-route pass.
	CaptureRouteShapes bool `toml:"capture_route_shapes"`
}

// RecordingConfig controls snapshot scheduling and storage.
type RecordingConfig struct {
	// SnapshotInterval is the time between station/route snapshot cycles.
	SnapshotInterval Duration `toml:"snapshot_interval"`

	// ArrivalsInterval is the time between arrival snapshot cycles. Zero
	// disables arrival recording.
	ArrivalsInterval Duration `toml:"arrivals_interval"`

	// StorageDirectoryPath is the root directory all snapshots are
	// written under, created on demand.
	StorageDirectoryPath string `toml:"storage_directory_path" validate:"required"`
}

// LPPConfig groups the API and recording tables.
type LPPConfig struct {
	API       APIConfig       `toml:"api"`
	Recording RecordingConfig `toml:"recording"`
}

// Config is the root configuration structure.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	LPP     LPPConfig     `toml:"lpp"`
}
