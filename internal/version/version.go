package version

// Version contains the application version information.
// This should be set via build-time ldflags in release builds:
// go build -ldflags "-X github.com/ricardoprins-paqt/vue-design-patterns/internal/version.Version=v1.2.0".
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
