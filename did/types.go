// Package did implements the DID Registry: the ten mutation commands over
// a DID's key set, services and metadata.
package did

// KeyRole is one of the five roles a DidKey can carry. Roles are stored and
// round-tripped but unchecked by command dispatch — any non-revoked key may
// authorize any command, regardless of its roles.
type KeyRole string

const (
	RoleAuthentication       KeyRole = "authentication"
	RoleAssertionMethod      KeyRole = "assertionMethod"
	RoleKeyAgreement         KeyRole = "keyAgreement"
	RoleCapabilityInvocation KeyRole = "capabilityInvocation"
	RoleCapabilityDelegation KeyRole = "capabilityDelegation"
)

// Key is one cryptographic key on a DID document.
type Key struct {
	PublicKey []byte    `cbor:"public_key"`
	Roles     []KeyRole `cbor:"roles"`
	Revoked   bool      `cbor:"revoked"`
}

// Service is an opaque, issuer-declared service endpoint.
type Service struct {
	ID          []byte `cbor:"id"`
	ServiceType []byte `cbor:"service_type"`
	Endpoint    []byte `cbor:"endpoint"`
}

// Metadata is one key/value entry in a DID's metadata map.
type Metadata struct {
	Key   []byte `cbor:"key"`
	Value []byte `cbor:"value"`
}

// Details is the full state of one DID.
type Details struct {
	Version     uint64     `cbor:"version"`
	Deactivated bool       `cbor:"deactivated"`
	Keys        []Key      `cbor:"keys"`
	Services    []Service  `cbor:"services"`
	Metadata    []Metadata `cbor:"metadata"`
}

// clone deep-copies Details so a command can stage mutations and discard
// them on any failed check without ever touching the stored record — a
// command that fails any check must leave the registry identical to its
// pre-state.
func (d Details) clone() Details {
	out := Details{Version: d.Version, Deactivated: d.Deactivated}
	out.Keys = append([]Key(nil), d.Keys...)
	for i := range out.Keys {
		out.Keys[i].PublicKey = append([]byte(nil), d.Keys[i].PublicKey...)
		out.Keys[i].Roles = append([]KeyRole(nil), d.Keys[i].Roles...)
	}
	out.Services = append([]Service(nil), d.Services...)
	for i := range out.Services {
		out.Services[i].ID = append([]byte(nil), d.Services[i].ID...)
		out.Services[i].ServiceType = append([]byte(nil), d.Services[i].ServiceType...)
		out.Services[i].Endpoint = append([]byte(nil), d.Services[i].Endpoint...)
	}
	out.Metadata = append([]Metadata(nil), d.Metadata...)
	for i := range out.Metadata {
		out.Metadata[i].Key = append([]byte(nil), d.Metadata[i].Key...)
		out.Metadata[i].Value = append([]byte(nil), d.Metadata[i].Value...)
	}
	return out
}

func (d *Details) hasPublicKey(pk []byte) bool {
	for _, k := range d.Keys {
		if bytesEqual(k.PublicKey, pk) {
			return true
		}
	}
	return false
}

func (d *Details) findKey(pk []byte) *Key {
	for i := range d.Keys {
		if bytesEqual(d.Keys[i].PublicKey, pk) {
			return &d.Keys[i]
		}
	}
	return nil
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

const maxU64 = ^uint64(0)

func saturatingInc(v uint64) uint64 {
	if v == maxU64 {
		return v
	}
	return v + 1
}
