package id

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Generator creates opaque IDs for client-assigned fields such as file uids.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", crerr.Wrap(err, "generate uuid")
	}
	return value.String(), nil
}

// StaticGenerator always returns the same value.
type StaticGenerator string

func (g StaticGenerator) NewID() (string, error) {
	return string(g), nil
}
