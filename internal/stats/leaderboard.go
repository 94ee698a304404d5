package stats

import (
	"sort"

	"github.com/verte-zerg/tuimath/internal/model"
)

// LeaderboardSize is the number of records kept.
const LeaderboardSize = 10

// Leaderboard is a ranked score table, highest first.
type Leaderboard struct {
	records  []model.ScoreRecord
	capacity int
}

// NewLeaderboard ranks records and trims them to capacity.
func NewLeaderboard(records []model.ScoreRecord, capacity int) *Leaderboard {
	if capacity <= 0 {
		capacity = LeaderboardSize
	}
	lb := &Leaderboard{records: append([]model.ScoreRecord(nil), records...), capacity: capacity}
	lb.rank()
	return lb
}

// Records returns a copy of the ranked table.
func (lb *Leaderboard) Records() []model.ScoreRecord {
	return append([]model.ScoreRecord(nil), lb.records...)
}

// Full reports whether the table is at capacity.
func (lb *Leaderboard) Full() bool {
	return len(lb.records) >= lb.capacity
}

// Qualifies reports whether points earn a place. A full table requires
// beating its weakest record.
func (lb *Leaderboard) Qualifies(points int) bool {
	if !lb.Full() {
		return true
	}
	return points > lb.records[len(lb.records)-1].Points
}

// Insert adds a record when it qualifies and evicts the weakest entry past
// capacity. Ties keep the older record ahead. It reports whether the table changed.
func (lb *Leaderboard) Insert(rec model.ScoreRecord) bool {
	if !lb.Qualifies(rec.Points) {
		return false
	}
	lb.records = append(lb.records, rec)
	lb.rank()
	return true
}

// Rank returns the 1-based position of points if inserted now, or 0.
func (lb *Leaderboard) Rank(points int) int {
	if !lb.Qualifies(points) {
		return 0
	}
	for i, r := range lb.records {
		if points > r.Points {
			return i + 1
		}
	}
	return len(lb.records) + 1
}

func (lb *Leaderboard) rank() {
	sort.SliceStable(lb.records, func(i, j int) bool {
		return lb.records[i].Points > lb.records[j].Points
	})
	if len(lb.records) > lb.capacity {
		lb.records = lb.records[:lb.capacity]
	}
}
