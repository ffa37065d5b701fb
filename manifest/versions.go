package manifest

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// resolveVersion picks the highest version among available that satisfies the
// constraint. The constraint "latest" (or empty) means any version.
func resolveVersion(constraint string, available []string) (string, error) {
	var c *semver.Constraints
	var err error

	if constraint == "" || constraint == "latest" {
		c, err = semver.NewConstraint(">= 0")
	} else {
		c, err = semver.NewConstraint(constraint)
	}
	if err != nil {
		return "", fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	var valid []*semver.Version
	for _, vStr := range available {
		v, err := semver.NewVersion(vStr)
		if err != nil {
			continue // skip unparsable versions
		}
		if c.Check(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return "", fmt.Errorf("no version satisfies constraint %q", constraint)
	}

	sort.Sort(semver.Collection(valid))
	return valid[len(valid)-1].Original(), nil
}
