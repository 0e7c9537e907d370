package domain

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open [start, end) ranges intersect.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

type ScheduleCandidate struct {
	TheaterID int       `json:"theaterId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func (c ScheduleCandidate) interval() Interval {
	return Interval{Start: c.StartTime, End: c.EndTime}
}

type SchedulePlan struct {
	Accepted    []ScheduleCandidate
	Conflicting []ScheduleCandidate
}

// PlanSchedule partitions candidates into accepted and conflicting sets.
// A candidate conflicts when its interval overlaps an already persisted
// interval for the same theater, or an earlier accepted candidate of the same
// request. Candidates are examined in request order and reported at most once.
// Malformed candidates (end <= start) are rejected before any conflict check.
func PlanSchedule(candidates []ScheduleCandidate, existing map[int][]Interval) (SchedulePlan, error) {
	for _, c := range candidates {
		if !c.EndTime.After(c.StartTime) {
			return SchedulePlan{}, ErrInvalidInterval
		}
	}

	plan := SchedulePlan{
		Accepted:    make([]ScheduleCandidate, 0, len(candidates)),
		Conflicting: make([]ScheduleCandidate, 0),
	}
	acceptedByTheater := make(map[int][]Interval)

	for _, c := range candidates {
		iv := c.interval()

		if overlapsAny(iv, existing[c.TheaterID]) || overlapsAny(iv, acceptedByTheater[c.TheaterID]) {
			plan.Conflicting = append(plan.Conflicting, c)
			continue
		}

		plan.Accepted = append(plan.Accepted, c)
		acceptedByTheater[c.TheaterID] = append(acceptedByTheater[c.TheaterID], iv)
	}

	return plan, nil
}

func overlapsAny(iv Interval, intervals []Interval) bool {
	for _, other := range intervals {
		if iv.Overlaps(other) {
			return true
		}
	}

	return false
}
