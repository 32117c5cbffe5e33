//go:build !production

package room

import "time"

// FastSettings are the default rules with one countdown second lasting tick.
func FastSettings(tick time.Duration) Settings {
	s := DefaultSettings()
	s.TickInterval = tick
	return s
}
