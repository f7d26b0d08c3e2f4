package domain

import "errors"

// ErrStateReplayed indicates an already-consumed OAuth state token was
// presented on the callback.
var ErrStateReplayed = errors.New("doctown: state already consumed")
