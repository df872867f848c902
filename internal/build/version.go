package build

import "fmt"

// Name is the binary name reported by the version command and the health endpoint.
const Name = "product-aggregator"

// Set at link time:
//
//	-ldflags "-X github.com/rohmanhakim/product-aggregator/internal/build.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version with the commit appended as build metadata,
// e.g. "1.0.0+abc123". The suffix is omitted when no commit was stamped.
func FullVersion() string {
	if Commit == "" || Commit == "none" {
		return Version
	}
	return Version + "+" + Commit
}

// Summary is the one-line banner printed by `product-aggregator version`.
func Summary() string {
	return fmt.Sprintf("%s %s (built %s)", Name, FullVersion(), BuildTime)
}
