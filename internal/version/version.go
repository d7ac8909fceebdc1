package version

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/bookbinder/internal/version.Version=v0.3.0".
var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version with commit suffix when one is known.
func String() string {
	if GitCommit == "unknown" {
		return Version
	}
	return Version + "+" + GitCommit
}
