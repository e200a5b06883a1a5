// Package codec provides payload codecs for channel messages.
//
// Every codec implements types.Codec. Long is the format used by the lock,
// semaphore and latch variants: a base-10 int64 rendered as text, which is
// what most brokers carry for counter-style notifications.
//
// CBOR uses Core Deterministic Encoding (RFC 8949 §4.2), so the same logical
// value always produces identical bytes.
package codec
