package utils

import (
	"sync"
	"time"
)

var (
	spOnce sync.Once
	spLoc  *time.Location
)

// ToSaoPaulo converts a timestamp to the America/Sao_Paulo timezone, the
// fixed regional zone all stored order timestamps are normalized to.
func ToSaoPaulo(t time.Time) time.Time {
	spOnce.Do(func() {
		loc, err := time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			loc = time.UTC
		}
		spLoc = loc
	})
	return t.In(spLoc)
}
