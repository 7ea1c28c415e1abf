package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// EveryMinute returns a rate.Sometimes that runs its function at most once a minute.
func EveryMinute() *rate.Sometimes {
	return &rate.Sometimes{
		Interval: time.Minute,
	}
}
