package service

import (
	"time"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.New().String()
}

// timeNow is swapped in tests that care about expiry
var timeNow = time.Now
