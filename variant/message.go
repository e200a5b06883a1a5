package variant

import "strconv"

// messageValue converts a decoded payload to int64.
//
// codec.Long yields int64; CBOR yields uint64 or int64; plain text payloads
// are parsed as base-10.
func messageValue(message any) (int64, bool) {
	switch v := message.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true //nolint:gosec // release messages are small
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
