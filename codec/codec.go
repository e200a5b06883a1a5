package codec

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/arloliu/submux/types"
)

var (
	// ErrUnsupportedType is returned when a value cannot be encoded by a codec.
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrMalformed is returned when wire bytes cannot be decoded.
	ErrMalformed = errors.New("malformed payload")

	// ErrUnknownCodec is returned by ByName for unregistered names.
	ErrUnknownCodec = errors.New("unknown codec")
)

// Codec instances. All are stateless and safe for concurrent use.
var (
	Long   types.Codec = longCodec{}
	String types.Codec = stringCodec{}
	Bytes  types.Codec = bytesCodec{}
	CBOR   types.Codec = cborCodec{}
)

// ByName returns the codec registered under name.
//
// Parameters:
//   - name: "long", "string", "bytes" or "cbor"
//
// Returns:
//   - types.Codec: The matching codec
//   - error: ErrUnknownCodec for any other name
func ByName(name string) (types.Codec, error) {
	switch name {
	case Long.Name():
		return Long, nil
	case String.Name():
		return String, nil
	case Bytes.Name():
		return Bytes, nil
	case CBOR.Name():
		return CBOR, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

type longCodec struct{}

func (longCodec) Name() string { return "long" }

func (longCodec) Encode(v any) ([]byte, error) {
	var n int64
	switch val := v.(type) {
	case int64:
		n = val
	case int:
		n = int64(val)
	case int32:
		n = int64(val)
	default:
		return nil, fmt.Errorf("long codec: %w: %T", ErrUnsupportedType, v)
	}

	return strconv.AppendInt(nil, n, 10), nil
}

func (longCodec) Decode(data []byte) (any, error) {
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("long codec: %w: %w", ErrMalformed, err)
	}

	return n, nil
}

type stringCodec struct{}

func (stringCodec) Name() string { return "string" }

func (stringCodec) Encode(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return []byte(val), nil
	case []byte:
		return val, nil
	case fmt.Stringer:
		return []byte(val.String()), nil
	default:
		return nil, fmt.Errorf("string codec: %w: %T", ErrUnsupportedType, v)
	}
}

func (stringCodec) Decode(data []byte) (any, error) {
	return string(data), nil
}

type bytesCodec struct{}

func (bytesCodec) Name() string { return "bytes" }

func (bytesCodec) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("bytes codec: %w: %T", ErrUnsupportedType, v)
	}

	return b, nil
}

func (bytesCodec) Decode(data []byte) (any, error) {
	// The transport may reuse its read buffer.
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}
