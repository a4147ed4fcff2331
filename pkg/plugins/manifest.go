package plugins

import (
	"encoding/json"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/shishobooks/shoka/pkg/version"
)

// SupportedManifestVersions lists manifest versions this release supports.
var SupportedManifestVersions = []int{1}

type Manifest struct {
	ManifestVersion int    `json:"manifestVersion"`
	ID              string `json:"id"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	Description     string `json:"description"`
	Author          string `json:"author"`
	MinShokaVersion string `json:"minShokaVersion"`
}

// ParseManifest parses and validates a manifest.json byte slice against the
// running application version.
func ParseManifest(data []byte) (*Manifest, error) {
	return parseManifest(data, version.Version)
}

func parseManifest(data []byte, appVersion string) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest JSON")
	}

	if m.ManifestVersion == 0 {
		return nil, errors.New("manifest: manifestVersion is required")
	}
	supported := false
	for _, v := range SupportedManifestVersions {
		if m.ManifestVersion == v {
			supported = true
			break
		}
	}
	if !supported {
		return nil, errors.Errorf("manifest: unsupported manifestVersion %d (supported: %v)", m.ManifestVersion, SupportedManifestVersions)
	}

	if m.ID == "" {
		return nil, errors.New("manifest: id is required")
	}
	if m.Name == "" {
		return nil, errors.New("manifest: name is required")
	}
	if _, err := parseVersion(m.Version); err != nil {
		return nil, errors.Wrap(err, "manifest: version")
	}

	if m.MinShokaVersion != "" {
		ok, err := satisfiesMinimum(appVersion, m.MinShokaVersion)
		if err != nil {
			return nil, errors.Wrap(err, "manifest: minShokaVersion")
		}
		if !ok {
			return nil, errors.Errorf("manifest: plugin requires version %s or newer (running %s)", m.MinShokaVersion, appVersion)
		}
	}

	return &m, nil
}

func parseVersion(v string) (*semver.Version, error) {
	if v == "" {
		return nil, errors.New("is required")
	}
	parsed, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version %q", v)
	}
	return parsed, nil
}

// satisfiesMinimum reports whether appVersion is at least minimum. Development
// builds satisfy every minimum.
func satisfiesMinimum(appVersion, minimum string) (bool, error) {
	constraint, err := semver.NewConstraint(">= " + strings.TrimPrefix(minimum, "v"))
	if err != nil {
		return false, errors.Wrapf(err, "invalid version %q", minimum)
	}
	if appVersion == "dev" {
		return true, nil
	}
	current, err := parseVersion(appVersion)
	if err != nil {
		return false, err
	}
	return constraint.Check(current), nil
}
