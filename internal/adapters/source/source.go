// Package source loads competitions from external data into the canonical
// model consumed by the ledger.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/adsim/internal/domain/model"
)

// Source kinds accepted by Parse.
const (
	KindJSON      = "json"
	KindYAML      = "yaml"
	KindFaust     = "faust"
	KindSynthetic = "synthetic"
)

// Source produces a competition.
type Source interface {
	// Load reads the competition. Malformed data fails with model.ErrValidation.
	Load(ctx context.Context) (*model.Competition, error)
	// String describes the source for logs and reports.
	String() string
}

// Kinds returns every supported source kind.
func Kinds() []string {
	return []string{KindJSON, KindYAML, KindFaust, KindSynthetic}
}

// Parse resolves a "kind:location" reference. A bare path ending in .json,
// .yaml or .yml is accepted as shorthand for the matching file kind.
func Parse(ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty data reference", ErrUnknownSource)
	}
	kind, location, found := strings.Cut(ref, ":")
	if !found {
		switch {
		case strings.HasSuffix(ref, ".json"):
			return NewJSONFile(ref), nil
		case strings.HasSuffix(ref, ".yaml"), strings.HasSuffix(ref, ".yml"):
			return NewYAMLFile(ref), nil
		}
		return nil, fmt.Errorf("%w: %q has no kind prefix (want one of %s)", ErrUnknownSource, ref, strings.Join(Kinds(), ", "))
	}
	if location == "" {
		return nil, fmt.Errorf("%w: %q has no location", ErrUnknownSource, ref)
	}
	switch strings.ToLower(kind) {
	case KindJSON:
		return NewJSONFile(location), nil
	case KindYAML:
		return NewYAMLFile(location), nil
	case KindFaust:
		return NewFaust(location), nil
	case KindSynthetic:
		cfg, err := parseSynthetic(location)
		if err != nil {
			return nil, err
		}
		return NewSynthetic(cfg), nil
	default:
		return nil, fmt.Errorf("%w: kind %q (want one of %s)", ErrUnknownSource, kind, strings.Join(Kinds(), ", "))
	}
}
