package fiche

import "time"

// SetNow fixes the clock used by the service and returns a restore func.
func SetNow(now time.Time) func() {
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	return func() { nowFunc = orig }
}
