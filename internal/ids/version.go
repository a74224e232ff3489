package ids

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a version string does not parse under
// the strict major[.minor[.patch]] grammar.
var ErrInvalidVersion = errors.New("ids: invalid version")

// Version is a non-negative (major, minor, patch) triple. Comparison is
// lexicographic on the triple.
type Version struct {
	Major, Minor, Patch uint64
}

// ParseVersion splits raw on '.'. Each present component must be an unsigned
// integer; a non-numeric component fails the parse. Missing trailing
// components default to 0, so "1.2" parses the same as "1.2.0". Strings with
// more than three components fail.
func ParseVersion(raw string) (Version, error) {
	parts := strings.Split(raw, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, ErrInvalidVersion
	}

	components := [3]uint64{}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, ErrInvalidVersion
		}
		components[i] = n
	}
	return Version{Major: components[0], Minor: components[1], Patch: components[2]}, nil
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, comparing major then minor then patch.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpUint(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpUint(v.Minor, other.Minor)
	}
	return cmpUint(v.Patch, other.Patch)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// String renders the version in canonical major.minor.patch form.
func (v Version) String() string {
	return strconv.FormatUint(v.Major, 10) + "." +
		strconv.FormatUint(v.Minor, 10) + "." +
		strconv.FormatUint(v.Patch, 10)
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
