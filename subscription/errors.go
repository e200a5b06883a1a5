package subscription

import "errors"

// ErrEncode indicates a payload could not be encoded for publishing.
var ErrEncode = errors.New("failed to encode payload")
