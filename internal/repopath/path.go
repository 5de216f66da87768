// Package repopath maps repository identifiers to storage paths and back.
//
// An identifier is rendered in decimal, zero-padded on the left to a multiple
// of the group width (at least GroupWidth*MinGroups digits), then split into
// fixed-width groups joined by "/". Identifier 7182480 becomes "07/18/24/80".
// Identifiers too large for the default group count grow extra leading groups
// instead of being truncated, so the scheme is open-ended.
package repopath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultGroupWidth = 2
	DefaultMinGroups  = 4
)

var (
	ErrInvalidIdentifier = errors.New("invalid repository identifier")
	ErrMalformedPath     = errors.New("malformed storage path")
)

type Mapper struct {
	GroupWidth int
	MinGroups  int
}

func NewMapper(groupWidth, minGroups int) (*Mapper, error) {
	if groupWidth < 1 {
		return nil, fmt.Errorf("group width must be positive, got %d", groupWidth)
	}
	if minGroups < 1 {
		return nil, fmt.Errorf("minimum group count must be positive, got %d", minGroups)
	}
	return &Mapper{
		GroupWidth: groupWidth,
		MinGroups:  minGroups,
	}, nil
}

func NewDefaultMapper() *Mapper {
	m, _ := NewMapper(DefaultGroupWidth, DefaultMinGroups)
	return m
}

// Path returns the canonical storage path for an identifier, relative to the
// storage root and joined with "/". Distinct identifiers always map to
// distinct paths, and the same identifier always maps to the same path.
func (m *Mapper) Path(id int64) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidIdentifier, id)
	}

	digits := strconv.FormatInt(id, 10)

	// Pad to the default total width, or past it to the next group boundary
	// for identifiers that no longer fit. Only the leading group absorbs
	// the padding.
	total := m.GroupWidth * m.MinGroups
	if len(digits) > total {
		total = len(digits)
		if rem := total % m.GroupWidth; rem != 0 {
			total += m.GroupWidth - rem
		}
	}
	digits = strings.Repeat("0", total-len(digits)) + digits

	groups := make([]string, 0, total/m.GroupWidth)
	for i := 0; i < total; i += m.GroupWidth {
		groups = append(groups, digits[i:i+m.GroupWidth])
	}
	return strings.Join(groups, "/"), nil
}

// Identifier decodes a path produced by Path back into the original
// identifier. Every segment must be exactly GroupWidth decimal digits.
func (m *Mapper) Identifier(path string) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}

	var digits strings.Builder
	for _, segment := range strings.Split(path, "/") {
		if len(segment) != m.GroupWidth {
			return 0, fmt.Errorf("%w: segment %q is not %d digits wide", ErrMalformedPath, segment, m.GroupWidth)
		}
		for _, c := range segment {
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("%w: segment %q contains non-digit characters", ErrMalformedPath, segment)
			}
		}
		digits.WriteString(segment)
	}

	trimmed := strings.TrimLeft(digits.String(), "0")
	if trimmed == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not fit a 64-bit identifier", ErrMalformedPath, path)
	}
	return id, nil
}
