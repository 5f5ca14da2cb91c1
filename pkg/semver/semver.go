// Package semver implements the version resolution rules for bundle
// manifests: strict three-component semantic versions with an optional
// prerelease tag, numeric ordering, and field-wise increments.
package semver

import (
	"regexp"

	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/confshare/confshare/pkg/errors"
)

// versionRe is the only accepted version shape. Anything else is an
// InvalidVersion condition, never guessed at.
var versionRe = regexp.MustCompile(`^\d+\.\d+\.\d+(-[\w.]+)?$`)

// Increment fields accepted by Increment.
const (
	FieldMajor = "major"
	FieldMinor = "minor"
	FieldPatch = "patch"
)

// Validate checks that v is a well-formed bundle version string.
func Validate(v string) error {
	if !versionRe.MatchString(v) {
		return errors.Newf(errors.ErrInvalidVersion, "invalid version %q, expected major.minor.patch[-prerelease]", v)
	}
	if _, err := mmsemver.StrictNewVersion(v); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidVersion, "invalid version %q", v)
	}
	return nil
}

// Compare orders two version strings: -1 if a < b, 0 if equal, 1 if a > b.
// A prerelease-tagged version orders before its corresponding release.
func Compare(a, b string) (int, error) {
	va, err := parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// UpdateCheck is the outcome of comparing an installed version against
// the version discovered from an upstream source.
type UpdateCheck struct {
	Local           string `json:"local"`
	Remote          string `json:"remote"`
	UpdateAvailable bool   `json:"update_available"`
}

// CheckUpdate reports whether remote is strictly newer than local.
func CheckUpdate(local, remote string) (UpdateCheck, error) {
	cmp, err := Compare(remote, local)
	if err != nil {
		return UpdateCheck{}, err
	}
	return UpdateCheck{
		Local:           local,
		Remote:          remote,
		UpdateAvailable: cmp > 0,
	}, nil
}

// Increment bumps one field of a version, resetting all lower-order
// fields to zero. Bumping a prerelease finalizes it: the prerelease tag
// is dropped.
func Increment(v, field string) (string, error) {
	parsed, err := parse(v)
	if err != nil {
		return "", err
	}

	var next mmsemver.Version
	switch field {
	case FieldMajor:
		next = parsed.IncMajor()
	case FieldMinor:
		next = parsed.IncMinor()
	case FieldPatch:
		next = parsed.IncPatch()
	default:
		return "", errors.Newf(errors.ErrInvalidIncrementField, "invalid increment field %q, expected major, minor or patch", field)
	}
	return next.String(), nil
}

func parse(v string) (*mmsemver.Version, error) {
	if err := Validate(v); err != nil {
		return nil, err
	}
	return mmsemver.StrictNewVersion(v)
}
