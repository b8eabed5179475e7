package service

import (
	"time"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
)

// DefaultClaimZone is where claim days roll over when no clock is configured
const DefaultClaimZone = "Europe/Berlin"

// Clock yields the current claim day
type Clock interface {
	// Today returns the civil date as midnight UTC
	Today() time.Time
}

type zoneClock struct {
	loc *time.Location
	now func() time.Time
}

// NewZoneClock returns a Clock whose days roll over at midnight in loc, not UTC.
// now may be nil to use time.Now.
func NewZoneClock(loc *time.Location, now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	return &zoneClock{loc: loc, now: now}
}

// NewDefaultClock returns a Clock rolling over at midnight in DefaultClaimZone.
func NewDefaultClock(now func() time.Time) Clock {
	loc, err := time.LoadLocation(DefaultClaimZone)
	if err != nil {
		log.WithError(err).Warnf("Failed to load %s, claim days fall back to UTC", DefaultClaimZone)
		loc = time.UTC
	}
	return NewZoneClock(loc, now)
}

func (c *zoneClock) Today() time.Time {
	return CivilDate(c.now(), c.loc)
}

// CivilDate truncates t to its calendar date in loc, expressed as midnight UTC.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetNextResetTime returns the instant the next claim day begins in loc
func GetNextResetTime(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
