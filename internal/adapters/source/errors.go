package source

import (
	"fmt"

	"github.com/okian/adsim/internal/domain/model"
)

// Sentinel kinds for source errors.
var (
	ErrUnknownSource = fmt.Errorf("%w: unknown data source", model.ErrConfiguration)
	ErrUnknownFlag   = fmt.Errorf("%w: capture references an unknown flag", model.ErrValidation)
	ErrMalformed     = fmt.Errorf("%w: malformed competition data", model.ErrValidation)
)
