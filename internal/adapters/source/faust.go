package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/okian/adsim/internal/domain/model"
	"golang.org/x/exp/slices"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FaustCTF gameserver tables.
type faustGameControl struct {
	ID          int
	ValidTicks  int
	CurrentTick int
}

func (faustGameControl) TableName() string { return "scoring_gamecontrol" }

type faustService struct {
	ID   int
	Name string
}

func (faustService) TableName() string { return "scoring_service" }

type faustUser struct {
	ID       int
	Username string
}

func (faustUser) TableName() string { return "auth_user" }

type faustStatusCheck struct {
	ID        int
	Tick      int
	Status    int
	ServiceID int
	TeamID    int
}

func (faustStatusCheck) TableName() string { return "scoring_statuscheck" }

type faustFlag struct {
	ID               int
	Tick             int
	ProtectingTeamID int
	ServiceID        int
}

func (faustFlag) TableName() string { return "scoring_flag" }

type faustCapture struct {
	ID              int
	Tick            int
	CapturingTeamID int
	FlagID          int
}

func (faustCapture) TableName() string { return "scoring_capture" }

// faustStatus maps gameserver status codes to checker verdicts.
var faustStatus = map[int]model.Status{ //nolint:gochecknoglobals // lookup table
	0: model.StatusOK,
	1: model.StatusDown,   // network error or timeout
	2: model.StatusMumble, // service misbehaves
	3: model.StatusMumble, // flag missing
	4: model.StatusRecovering,
	5: model.StatusError,
}

// Faust reads a competition from a FaustCTF gameserver database. Every
// service has a single flagstore, numbered after the service id.
type Faust struct {
	dsn       string
	dialector gorm.Dialector
}

// NewFaust returns a source reading the postgres database at dsn.
func NewFaust(dsn string) *Faust {
	return &Faust{dsn: dsn, dialector: postgres.Open(dsn)}
}

// NewFaustWithDialector reads through an arbitrary gorm dialector.
func NewFaustWithDialector(name string, d gorm.Dialector) *Faust {
	return &Faust{dsn: name, dialector: d}
}

func (f *Faust) String() string { return KindFaust + ":" + redactDSN(f.dsn) }

// Load queries the gameserver tables.
func (f *Faust) Load(ctx context.Context) (*model.Competition, error) {
	db, err := gorm.Open(f.dialector, &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("%w: open faust database: %w", model.ErrConfiguration, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return loadFaust(db.WithContext(ctx))
}

func loadFaust(db *gorm.DB) (*model.Competition, error) {
	var gc faustGameControl
	if err := db.First(&gc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: scoring_gamecontrol is empty", ErrMalformed)
		}
		return nil, fmt.Errorf("read game control: %w", err)
	}
	if gc.CurrentTick < 1 {
		return nil, fmt.Errorf("%w: game has not started (current_tick=%d)", ErrMalformed, gc.CurrentTick)
	}

	var (
		services []faustService
		users    []faustUser
		checks   []faustStatusCheck
		flags    []faustFlag
		captures []faustCapture
	)
	for _, q := range []struct {
		table string
		dest  any
	}{
		{"services", &services},
		{"users", &users},
		{"status checks", &checks},
		{"flags", &flags},
		{"captures", &captures},
	} {
		if err := db.Order("id").Find(q.dest).Error; err != nil {
			return nil, fmt.Errorf("read %s: %w", q.table, err)
		}
	}

	last := model.Round(gc.CurrentTick - 1)
	comp := &model.Competition{
		Name:      "faustctf",
		Retention: gc.ValidTicks,
		LastRound: last,
	}

	svcNames := make(map[int]model.ServiceName, len(services))
	for _, s := range services {
		svcNames[s.ID] = model.ServiceName(s.Name)
		comp.Services = append(comp.Services, model.Service{
			Name:       model.ServiceName(s.Name),
			Flagstores: []model.FlagstoreID{model.FlagstoreID(s.ID)},
		})
	}

	userNames := make(map[int]model.TeamID, len(users))
	for _, u := range users {
		userNames[u.ID] = model.TeamID(u.Username)
	}
	// Only users with checker or flag records played; the rest are admins.
	playing := make(map[int]struct{})
	team := func(id int) (model.TeamID, error) {
		name, ok := userNames[id]
		if !ok {
			return "", fmt.Errorf("%w: unknown team id %d", ErrMalformed, id)
		}
		playing[id] = struct{}{}
		return name, nil
	}
	service := func(id int) (model.ServiceName, error) {
		name, ok := svcNames[id]
		if !ok {
			return "", fmt.Errorf("%w: unknown service id %d", ErrMalformed, id)
		}
		return name, nil
	}

	for _, c := range checks {
		if model.Round(c.Tick) > last {
			continue
		}
		st, ok := faustStatus[c.Status]
		if !ok {
			return nil, fmt.Errorf("%w: status code %d", ErrMalformed, c.Status)
		}
		t, err := team(c.TeamID)
		if err != nil {
			return nil, err
		}
		s, err := service(c.ServiceID)
		if err != nil {
			return nil, err
		}
		comp.Statuses = append(comp.Statuses, model.CheckerStatus{Team: t, Service: s, Round: model.Round(c.Tick), Status: st})
	}

	origins := make(map[int]model.Origin, len(flags))
	for _, fl := range flags {
		t, err := team(fl.ProtectingTeamID)
		if err != nil {
			return nil, err
		}
		s, err := service(fl.ServiceID)
		if err != nil {
			return nil, err
		}
		origins[fl.ID] = model.Origin{Team: t, Service: s, Flagstore: model.FlagstoreID(fl.ServiceID), Round: model.Round(fl.Tick)}
	}

	for _, c := range captures {
		if model.Round(c.Tick) > last {
			continue
		}
		origin, ok := origins[c.FlagID]
		if !ok {
			return nil, fmt.Errorf("%w: capture %d of flag %d", ErrUnknownFlag, c.ID, c.FlagID)
		}
		t, err := team(c.CapturingTeamID)
		if err != nil {
			return nil, err
		}
		comp.Captures = append(comp.Captures, model.Capture{Attacker: t, Flag: origin, Round: model.Round(c.Tick)})
	}

	for _, u := range users {
		if _, ok := playing[u.ID]; ok {
			comp.Teams = append(comp.Teams, userNames[u.ID])
		}
	}
	slices.Sort(comp.Teams)
	return comp, nil
}

var passwordField = regexp.MustCompile(`password=\S+`) //nolint:gochecknoglobals // compiled once

// redactDSN hides the password of URL or key=value style DSNs.
func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return u.Redacted()
	}
	return passwordField.ReplaceAllString(dsn, "password=xxxxx")
}
