package model

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity marks a station record that cannot be scored.
var ErrDataIntegrity = errors.New("data integrity")

// DataIntegrityError describes why a single station was rejected.
type DataIntegrityError struct {
	StationID string
	Reason    string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("station %s: %s", e.StationID, e.Reason)
}

// Unwrap allows errors.Is(err, ErrDataIntegrity).
func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }
