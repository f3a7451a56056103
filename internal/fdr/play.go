package fdr

import (
	"errors"
	"fmt"
	"time"
)

type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Play calls cb for each record, waiting between records for the recorded
// time difference divided by speed. A record whose time goes backwards
// starts a new segment and is delivered without waiting.
func Play(records []Record, speed float64, loop bool, sleeper Sleeper, cb func(*Record) error) error {
	if speed <= 0 {
		return fmt.Errorf("speed must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	if cb == nil {
		return errors.New("callback is nil")
	}
	if len(records) == 0 {
		return errors.New("no records")
	}

	for {
		for i := range records {
			r := &records[i]
			if i > 0 {
				wait := time.Duration((r.TimeS - records[i-1].TimeS) / speed * float64(time.Second))
				if wait > 0 {
					sleeper.Sleep(wait)
				}
			}
			if err := cb(r); err != nil {
				return err
			}
		}
		if !loop {
			return nil
		}
	}
}
