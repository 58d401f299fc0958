package model

import (
	"fmt"
	"strings"
)

// Status is the checker health classification of a service instance.
type Status int

// Checker states. The zero value is StatusDown so that an unset status never
// earns SLA points.
const (
	StatusDown       Status = iota // unreachable or offline
	StatusOK                       // fully functional
	StatusRecovering               // functional, but older flags are missing
	StatusMumble                   // reachable but misbehaving
	StatusError                    // checker-internal error
)

var statusNames = map[Status]string{
	StatusDown:       "DOWN",
	StatusOK:         "OK",
	StatusRecovering: "RECOVERING",
	StatusMumble:     "MUMBLE",
	StatusError:      "ERROR",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Healthy reports whether the status earns SLA points.
func (s Status) Healthy() bool {
	return s == StatusOK || s == StatusRecovering
}

// ParseStatus parses a checker status name. OFFLINE is accepted as an alias
// for DOWN since several gameservers report it that way.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OK", "UP", "SUCCESS":
		return StatusOK, nil
	case "RECOVERING":
		return StatusRecovering, nil
	case "MUMBLE", "FAULTY", "CORRUPT":
		return StatusMumble, nil
	case "DOWN", "OFFLINE":
		return StatusDown, nil
	case "ERROR", "INTERNAL_ERROR":
		return StatusError, nil
	default:
		return StatusDown, fmt.Errorf("%w: unknown checker status %q", ErrValidation, raw)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
