package services

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the single well-defined time read per operation. Injected so
// tests can pin it.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies entity ids. Injected so tests can make them
// deterministic.
type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock {
	return systemClock{}
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// UUIDGenerator returns a random UUID generator.
func UUIDGenerator() IDGenerator {
	return uuidGenerator{}
}
