package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEnumeration marks a failure reading the data root; nothing is
	// dispatched once it occurs.
	ErrEnumeration = errors.New("enumeration error")
	// ErrArchive marks a quarantine move that could not complete. Fatal for
	// the affected item only.
	ErrArchive = errors.New("archive error")
	// ErrLaunch marks a process that could not be started. The run continues
	// with the remaining items.
	ErrLaunch = errors.New("launch error")
	// ErrCancelled reports that the stop sentinel was observed. Not a
	// failure: it halts new dispatch and the run proceeds to draining.
	ErrCancelled = errors.New("cancellation requested")
)

// Wrap tags err with a classification marker and item context.
func Wrap(marker error, detail string, err error) error {
	if marker == nil {
		marker = ErrLaunch
	}
	detail = strings.TrimSpace(detail)
	if err != nil {
		if detail == "" {
			return fmt.Errorf("%w: %w", marker, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	if detail == "" {
		return marker
	}
	return fmt.Errorf("%w: %s", marker, detail)
}
