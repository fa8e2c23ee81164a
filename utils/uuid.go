package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a time-ordered UUIDv7 string, so IDs for auctions,
// bids and scores sort roughly by creation time in the sqlite indexes.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
