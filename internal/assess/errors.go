package assess

import "errors"

// ErrNoProfileResponse is returned when the profile probe got no response.
var ErrNoProfileResponse = errors.New("no response to the profile request")
