package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRoundTrip(t *testing.T) {
	type record struct {
		Version uint64 `cbor:"version"`
		Name    string `cbor:"name"`
	}
	in := record{Version: 7, Name: "hello"}

	enc, err := Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, Unmarshal(enc, &out))
	assert.Equal(t, in, out)
}

func TestMarshalDeterministic(t *testing.T) {
	type record struct {
		B string `cbor:"b"`
		A string `cbor:"a"`
	}
	in := record{A: "1", B: "2"}

	enc1, err := Marshal(in)
	require.NoError(t, err)
	enc2, err := Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, enc1, enc2)
}

func TestPayloadFieldOrderMatters(t *testing.T) {
	p1, err := NewPayload("PFX").Field([]byte("a")).Field([]byte("b")).Bytes()
	require.NoError(t, err)
	p2, err := NewPayload("PFX").Field([]byte("b")).Field([]byte("a")).Bytes()
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

func TestPayloadPrefixIsDomainSeparating(t *testing.T) {
	p1, err := NewPayload("AAA").Field([]byte("x")).Bytes()
	require.NoError(t, err)
	p2, err := NewPayload("BBB").Field([]byte("x")).Bytes()
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}
