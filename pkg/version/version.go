package version

// This variable is set during build time via -ldflags.
var version = "unknown"

func Get() string {
	return version
}
