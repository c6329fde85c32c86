package main

import (
	"strings"

	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler generates and checks prefixed unique identifiers.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(id, prefix string) bool
}

// IDsHandler implements the UIDHandler interface with random v4 uuids.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random unique identifier in the form `<prefix>:<uuid>`.
func (idh *IDsHandler) Generate(prefix string) string {
	return prefix + ":" + uuid.Must(uuid.NewV4()).String()
}

// IsValid checks if a given string carries the prefix followed by a valid uuid.
func (idh *IDsHandler) IsValid(id, prefix string) bool {
	raw, found := strings.CutPrefix(id, prefix+":")
	if !found {
		return false
	}
	return uuid.FromStringOrNil(raw) != uuid.Nil
}
