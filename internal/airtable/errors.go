package airtable

import "errors"

// ErrSourceUnavailable marks any network or HTTP failure fetching a table.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrMalformedResponse marks a 2xx response without a records array. It
// matches ErrSourceUnavailable under errors.Is, since upstream tiers treat
// both the same way.
var ErrMalformedResponse error = malformed{}

type malformed struct{}

func (malformed) Error() string        { return "malformed response: missing records" }
func (malformed) Is(target error) bool { return target == ErrSourceUnavailable }
