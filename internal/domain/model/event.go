// Package model contains domain models passed between layers.
package model

import "fmt"

// TeamID identifies a participating team.
type TeamID string

// ServiceName identifies a service; unique within a competition.
type ServiceName string

// FlagstoreID identifies an independently exploitable unit inside a service.
type FlagstoreID int

// Round is a competition tick.
type Round int

// Origin identifies a flag by the tuple it was minted for.
type Origin struct {
	Team      TeamID      // owner of the flag
	Service   ServiceName // service the flag was stored in
	Flagstore FlagstoreID // flagstore within the service
	Round     Round       // round the flag was minted in
}

func (o Origin) String() string {
	return fmt.Sprintf("%s/%s/%d@%d", o.Team, o.Service, o.Flagstore, o.Round)
}

// Capture records that Attacker submitted the flag minted at Flag during Round.
type Capture struct {
	Attacker TeamID
	Flag     Origin
	Round    Round
}

// CheckerStatus is the checker verdict for one team's service in one round.
type CheckerStatus struct {
	Team    TeamID
	Service ServiceName
	Round   Round
	Status  Status
}
