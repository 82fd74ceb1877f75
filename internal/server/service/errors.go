package service

import "errors"

// ErrInstrumentNotFound is returned when a query resolves to no instrument.
var ErrInstrumentNotFound = errors.New("instrument not found")
