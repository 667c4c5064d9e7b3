package game

// ScoringPolicy maps the seconds left on the clock to the points awarded
// for a correct answer.
type ScoringPolicy interface {
	PointsFor(timeRemaining int) int
}

// TimeTable is the fixed three-second bracket table: 10 points for an answer
// in the first three seconds down to 1 point for the last four.
type TimeTable struct{}

var brackets = []struct {
	minRemaining int
	points       int
}{
	{28, 10},
	{25, 9},
	{22, 8},
	{19, 7},
	{16, 6},
	{13, 5},
	{10, 4},
	{7, 3},
	{4, 2},
}

func (TimeTable) PointsFor(timeRemaining int) int {
	for _, b := range brackets {
		if timeRemaining >= b.minRemaining {
			return b.points
		}
	}
	return 1
}
