package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrUpstreamFetch is wrapped by remote API clients when a call fails or
// returns a non-2xx status
var ErrUpstreamFetch = goerr.New("upstream fetch failed")
