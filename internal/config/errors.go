package config

import (
	"fmt"

	"github.com/okian/adsim/internal/domain/model"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = fmt.Errorf("%w: invalid config", model.ErrConfiguration)
	ErrLoadConfig    = fmt.Errorf("%w: load config failed", model.ErrConfiguration)
)
