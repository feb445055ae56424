package metrics

import "github.com/theirongolddev/bunkerdash/internal/model"

// Level buckets goal progress for coloring.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// GoalProgress returns mrr as a percentage of goal, capped at 100. A goal of
// zero or less counts as reached when there is any revenue.
func GoalProgress(mrr, goal float64) float64 {
	if goal <= 0 {
		if mrr > 0 {
			return 100
		}
		return 0
	}
	pct := mrr / goal * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// ProgressLevel classifies a percentage: below 40 is low, below 80 medium.
func ProgressLevel(pct float64) Level {
	switch {
	case pct < 40:
		return LevelLow
	case pct < 80:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Window returns the trailing months of history selected by r. The result
// is a fresh slice; history is never modified.
func Window(history []model.MrrPoint, r model.TimeRange) []model.MrrPoint {
	n := r.Months()
	if n > len(history) {
		n = len(history)
	}
	return append([]model.MrrPoint(nil), history[len(history)-n:]...)
}

// Summary is the set of derived figures shown on the dashboard cards.
type Summary struct {
	MRR               float64
	MRRGoal           float64
	Progress          float64
	Level             Level
	ActiveSubscribers int
	Clients           int
	Affiliates        int
	TotalSpent        float64
	TotalPayout       float64
	LatestGained      int
	LatestLost        int
}

// Summarize computes the card figures for s.
func Summarize(s *model.State) Summary {
	progress := GoalProgress(s.KPIs.MRR, s.KPIs.MRRGoal)
	sum := Summary{
		MRR:               s.KPIs.MRR,
		MRRGoal:           s.KPIs.MRRGoal,
		Progress:          progress,
		Level:             ProgressLevel(progress),
		ActiveSubscribers: s.KPIs.ActiveSubscribers,
		Clients:           len(s.Clients),
		Affiliates:        len(s.Affiliates),
		TotalPayout:       TotalPayout(s.Affiliates, s.Clients),
	}
	for _, c := range s.Clients {
		sum.TotalSpent += c.TotalSpent
	}
	if n := len(s.ClientActivity); n > 0 {
		latest := s.ClientActivity[0]
		for _, a := range s.ClientActivity[1:] {
			if a.Month >= latest.Month {
				latest = a
			}
		}
		sum.LatestGained = latest.Gained
		sum.LatestLost = latest.Lost
	}
	return sum
}
