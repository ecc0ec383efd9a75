package common

// Provider name constants for consistent naming across the application
const (
	// ProviderStaticMaps is the internal identifier for Google Static Maps satellite imagery
	ProviderStaticMaps = "google_static_maps"

	// DisplayNameStaticMaps is the human-readable name used in log output
	DisplayNameStaticMaps = "Google Static Maps"
)
