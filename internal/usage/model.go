package usage

import "time"

const PlanFree = "free"

// Usage represents a user's plan consumption snapshot.
type Usage struct {
	Plan     string    `json:"plan"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Remaining is how many generations are left in the window.
func (u Usage) Remaining() int {
	if u.Used >= u.Limit {
		return 0
	}
	return u.Limit - u.Used
}
