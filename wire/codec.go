// Package wire implements the canonical, deterministic byte encoding shared
// by two surfaces of the engine: the signing-payload construction of §4.2
// (every command's bytes-to-be-signed) and the persisted-state serialization
// of §6 (values stored under the three registry prefixes).
//
// Both need the same property: identical logical content always produces
// identical bytes, independent of map iteration order or platform, so that
// every byzantine replica computes and verifies the same payload. We get
// that from fxamacker/cbor/v2's "core deterministic encoding" mode (RFC 8949
// §4.2.1): map keys are sorted, there is exactly one encoding per value, and
// byte strings/arrays carry their own length prefix — which is what §4.2
// means by "length-prefixed for variable-length byte strings and sequences".
package wire

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/Quantum-Blockchains/qsb-node/errors"
)

var encMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(errors.Wrap(err, "build canonical cbor encode mode"))
	}
	encMode = mode
}

// Marshal produces the canonical encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "canonical cbor encode")
	}
	return b, nil
}

// Unmarshal decodes the canonical encoding of v back into dst.
func Unmarshal(data []byte, dst interface{}) error {
	if err := cbor.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, "canonical cbor decode")
	}
	return nil
}

// Payload incrementally builds a canonical signing payload: an ASCII
// domain-separation prefix followed by the canonical encoding of each
// non-signature command field, in the order given by §4.2's payload table.
type Payload struct {
	buf []byte
	err error
}

// NewPayload starts a payload with the command's domain-separation prefix.
func NewPayload(prefix string) *Payload {
	return &Payload{buf: []byte(prefix)}
}

// Field appends the canonical encoding of one command field.
func (p *Payload) Field(v interface{}) *Payload {
	if p.err != nil {
		return p
	}
	enc, err := Marshal(v)
	if err != nil {
		p.err = err
		return p
	}
	p.buf = append(p.buf, enc...)
	return p
}

// Bytes finalizes the payload. It returns the first encoding error
// encountered by a Field call, if any.
func (p *Payload) Bytes() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.buf, nil
}
