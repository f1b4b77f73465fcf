// Package schema implements the Schema Registry: content-addressed
// registration of credential schemas, and deprecation by issuer.
package schema

// Record is the full state of one registered schema.
type Record struct {
	Version    uint64   `cbor:"version"`
	Deprecated bool     `cbor:"deprecated"`
	IssuerDid  []byte   `cbor:"issuer_did"`
	SchemaHash [32]byte `cbor:"schema_hash"`
	SchemaURI  []byte   `cbor:"schema_uri"`
}

func (r Record) clone() Record {
	return Record{
		Version:    r.Version,
		Deprecated: r.Deprecated,
		IssuerDid:  append([]byte(nil), r.IssuerDid...),
		SchemaHash: r.SchemaHash,
		SchemaURI:  append([]byte(nil), r.SchemaURI...),
	}
}

const maxU64 = ^uint64(0)

func saturatingInc(v uint64) uint64 {
	if v == maxU64 {
		return v
	}
	return v + 1
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
