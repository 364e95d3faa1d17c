package handlers

import (
	"time"

	"github.com/jaevor/go-nanoid"
)

// IDLength is the length of generated entity ids.
const IDLength = 12

// IDGenerator returns a new unique entity id.
type IDGenerator func() string

// NewIDGenerator creates a URL-safe nanoid generator.
func NewIDGenerator(length int) (IDGenerator, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, err
	}

	return IDGenerator(gen), nil
}

// Clock returns the current time.
type Clock func() time.Time
