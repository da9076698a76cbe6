package idgen

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const referenceAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewID returns a random UUID string used as primary key.
func NewID() string {
	return uuid.NewString()
}

// Reference returns a short human-friendly booking reference, e.g. "K7Q2M9XA".
func Reference() string {
	id, err := gonanoid.Generate(referenceAlphabet, 8)
	if err != nil {
		return ""
	}
	return id
}
