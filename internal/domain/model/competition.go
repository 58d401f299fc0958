package model

// Service describes a service and its flagstores.
type Service struct {
	Name       ServiceName
	Flagstores []FlagstoreID
	// FlagRate is how many flags the service receives per round. Zero means
	// one per flagstore.
	FlagRate float64
}

// Rate returns the flags the service receives per round.
func (s Service) Rate() float64 {
	if s.FlagRate > 0 {
		return s.FlagRate
	}
	return float64(len(s.Flagstores))
}

// Competition is the canonical, loader-independent description of one A/D
// competition. Loaders build it; the ledger validates and indexes it.
type Competition struct {
	Name     string
	Teams    []TeamID
	Services []Service
	// Retention is the number of rounds a flag stays valid, counting the
	// round it was minted in.
	Retention int
	// FirstRound and LastRound bound the rounds the competition ran.
	FirstRound Round
	LastRound  Round
	// NOPTeam, when set, names the reference team whose flags and captures
	// are excluded from scoring.
	NOPTeam  TeamID
	Captures []Capture
	Statuses []CheckerStatus
}

// Flagstores returns the total number of flagstores over all services.
func (c *Competition) Flagstores() int {
	n := 0
	for _, s := range c.Services {
		n += len(s.Flagstores)
	}
	return n
}
