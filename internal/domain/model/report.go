package model

// Report is the outcome of scoring one competition with one formula.
type Report struct {
	RunID   string
	Formula string
	Data    string
	From    Round
	To      Round
	// ScaleFactor is the multiplier applied to the scoreboard, 1 when
	// scaling was disabled or had no effect.
	ScaleFactor float64
	Final       Scoreboard
	// Series is empty unless per-round output was requested.
	Series []Snapshot
}
