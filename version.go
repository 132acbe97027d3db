package monitor

import (
	"fmt"

	"github.com/jwolf02/Monitor/pkg/log"
)

// Version information for the monitor library.
const (
	// Version is the current version of the monitor library.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the current version of the library and of every
// public sub-module.
func ModuleVersions() map[string]string {
	return map[string]string{
		"monitor": Version,
		"log":     log.Version,
	}
}

// CompatibilityMatrix returns the minimum compatible version of every
// public sub-module.
func CompatibilityMatrix() map[string]string {
	return map[string]string{
		"monitor": MinCompatibleVersion,
		"log":     log.MinCompatibleVersion,
	}
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"log": {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}

	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	// Parse versions (simplified semver comparison)
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
