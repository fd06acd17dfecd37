package id

import (
	"strings"

	"github.com/google/uuid"
)

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator { return &UUIDGenerator{} }

func (*UUIDGenerator) NewID() string { return uuid.NewString() }

// NewTransactionID returns an opaque gateway transaction token: a fixed
// prefix plus eight uppercase characters. Uniqueness is best-effort.
func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString()[:8])
}
