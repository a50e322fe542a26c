package domain

import (
	"strings"

	"github.com/google/uuid"
)

// UniqueID asks the server to generate the id of a new document or file.
const UniqueID = "unique()"

// NewID returns a fresh 20 character identifier in the platform's format.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}
