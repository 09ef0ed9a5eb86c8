package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// CheckConfigCompatibility checks that a configuration written for configVersion can be
// read by a scanner built at scannerVersion.
//
// Rules:
//   - "main" on either side (development build) skips the check
//   - an empty configVersion skips the check
//   - major versions must match
//   - the config's minor version must not be newer than the scanner's
//   - patch versions are ignored
//
// Examples:
//   - scanner 1.2.0, config 1.2.0 -> OK
//   - scanner 1.3.0, config 1.2.0 -> OK (older config, newer scanner)
//   - scanner 1.2.0, config 1.3.0 -> ERROR (config uses newer settings)
//   - scanner 2.0.0, config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(scannerVersion, configVersion string) error {
	scannerVersion = strings.TrimPrefix(scannerVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if scannerVersion == "main" || configVersion == "main" || configVersion == "" {
		return nil
	}

	scannerSemver, err := semver.NewVersion(scannerVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid scanner version '%s'", scannerVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if scannerSemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "major version mismatch: scanner is %d.x.x but config requires %d.x.x",
			scannerSemver.Major(), configSemver.Major())
	}

	if configSemver.Minor() > scannerSemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "config requires %d.%d.x but scanner is %d.%d.x",
			configSemver.Major(), configSemver.Minor(),
			scannerSemver.Major(), scannerSemver.Minor())
	}

	return nil
}
