package event

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// HashString is a hexadecimal SHA-256 digest of an event's state.
type HashString = string

// SaltEnvVar is the environment variable NewHasherFromEnv reads the hash
// salt from.
const SaltEnvVar = "EVENTBUS_HASH_SALT"

// eventTopicKey mixes the event's type tag into the hash input, so that two
// events of different kinds with identical field values hash differently.
const eventTopicKey = "__event_topic__"

// Encoder produces a deterministic byte encoding of a value, suitable as
// input for cryptographic hashing. Implementations must encode map keys in
// a stable order.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// canonicalJSON encodes with sorted map keys, which makes the output stable
// for identical inputs.
var canonicalJSON = jsoniter.Config{SortMapKeys: true}.Froze()

type canonicalJSONEncoder struct{}

func (canonicalJSONEncoder) Encode(v any) ([]byte, error) {
	return canonicalJSON.Marshal(v)
}

// NewCanonicalJSONEncoder returns the default Encoder: JSON with sorted map keys.
func NewCanonicalJSONEncoder() Encoder {
	return canonicalJSONEncoder{}
}

// Hasher computes content-address digests for events. The zero value is not
// usable; construct it with NewHasher or NewHasherFromEnv.
type Hasher struct {
	encoder Encoder
	salt    string
}

// HasherOption defines a functional option for configuring a Hasher.
type HasherOption func(*Hasher)

// WithSalt sets a shared secret that is mixed into every digest.
func WithSalt(salt string) HasherOption {
	return func(h *Hasher) {
		h.salt = salt
	}
}

// WithEncoder replaces the canonical JSON encoder.
func WithEncoder(encoder Encoder) HasherOption {
	return func(h *Hasher) {
		if encoder != nil {
			h.encoder = encoder
		}
	}
}

// NewHasher creates a Hasher with the canonical JSON encoder and an empty salt.
func NewHasher(options ...HasherOption) Hasher {
	hasher := Hasher{encoder: NewCanonicalJSONEncoder()}

	for _, option := range options {
		option(&hasher)
	}

	return hasher
}

// NewHasherFromEnv creates a Hasher with the salt taken from SaltEnvVar.
func NewHasherFromEnv(options ...HasherOption) Hasher {
	return NewHasher(append([]HasherOption{WithSalt(os.Getenv(SaltEnvVar))}, options...)...)
}

// Hash computes the SHA-256 digest of the event's full field set, its type
// tag and the configured salt.
func (h Hasher) Hash(e Event) (HashString, error) {
	attrs := maps.Clone(e.Attributes())
	if attrs == nil {
		attrs = make(map[string]any, 1)
	}
	attrs[eventTopicKey] = e.EventType()

	encoded, err := h.encoder.Encode([]any{attrs, h.salt})
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256(encoded)

	return hex.EncodeToString(digest[:]), nil
}

// Equal reports whether two events have the same type identity and field
// set, by comparing their digests.
func (h Hasher) Equal(a, b Event) (bool, error) {
	hashA, err := h.Hash(a)
	if err != nil {
		return false, err
	}

	hashB, err := h.Hash(b)
	if err != nil {
		return false, err
	}

	return hashA == hashB, nil
}
