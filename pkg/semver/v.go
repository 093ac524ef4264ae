package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type (
	// V is structured semantic version representation
	V struct {
		Major, Minor, Patch uint
		PreRelease          string
		BuildMetadata       []string
	}
)

// ErrInvalid - returned by Parse when the value is not a semantic version.
var ErrInvalid = errors.New("semver: invalid version")

func (v V) String() string {
	buf := strings.Builder{}
	buf.WriteString(strconv.FormatUint(uint64(v.Major), 10))
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatUint(uint64(v.Minor), 10))
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatUint(uint64(v.Patch), 10))
	if v.PreRelease != "" {
		buf.WriteByte('-')
		buf.WriteString(v.PreRelease)
	}
	if len(v.BuildMetadata) > 0 {
		buf.WriteByte('+')
		buf.WriteString(strings.Join(v.BuildMetadata, "."))
	}

	return buf.String()
}

// Parse - builds V from "MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD.META]".
// A leading "v" is accepted, so values injected from git tags parse too.
func Parse(s string) (V, error) {
	v := V{}
	rest := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexByte(rest, '+'); i > -1 {
		if i == len(rest)-1 {
			return V{}, fmt.Errorf("%w: %q has empty build metadata", ErrInvalid, s)
		}
		v.BuildMetadata = strings.Split(rest[i+1:], ".")
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '-'); i > -1 {
		v.PreRelease = rest[i+1:]
		if v.PreRelease == "" {
			return V{}, fmt.Errorf("%w: %q has empty pre-release", ErrInvalid, s)
		}
		rest = rest[:i]
	}
	core := strings.Split(rest, ".")
	if len(core) != 3 {
		return V{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	nums := [3]uint{}
	for i, part := range core {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return V{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
		nums[i] = uint(n)
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}
