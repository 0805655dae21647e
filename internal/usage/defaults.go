package usage

import "time"

// Policy is the quota applied to every account.
type Policy struct {
	Plan  string
	Limit int
}

func (p Policy) fresh(now time.Time) Usage {
	return Usage{Plan: p.Plan, Limit: p.Limit, Used: 0, ResetsAt: NextReset(now)}
}

// NextReset returns the next Monday 00:00 UTC strictly after now.
func NextReset(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := (8 - int(day.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return day.AddDate(0, 0, days)
}

// roll starts a new window when the current one has ended and applies the
// configured limit.
func (p Policy) roll(u Usage, now time.Time) (Usage, bool) {
	changed := false
	if u.Limit != p.Limit {
		u.Limit = p.Limit
		changed = true
	}
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = NextReset(now)
		changed = true
	}
	return u, changed
}
