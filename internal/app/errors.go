package app

import (
	"errors"

	"github.com/salam-labs/adzan/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

var ErrConflict = ports.ErrConflict

// ErrLocationNotSet: l'utilisateur n'a pas encore choisi de coordonnées.
var ErrLocationNotSet = errors.New("location not set")

var ErrInvalidSettings = errors.New("invalid settings")

var ErrInvalidLastRead = errors.New("invalid last read")

// CodedError est renvoyée par les adapters (aladhan, bigdatacloud) avec un code stable.
//
// Exemples de codes: invalid_params, http_status, network_error, invalid_payload.
type CodedError = ports.CodedError
