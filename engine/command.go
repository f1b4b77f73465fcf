// Package engine ties the three registries (did, statuslist, schema) to a
// single Store and chain.Context, and dispatches a tagged-union Command
// type: one variant per mutation, carrying exactly the fields that
// mutation's canonical signing payload is built from.
package engine

import "github.com/Quantum-Blockchains/qsb-node/did"

// Kind discriminates the Command union.
type Kind int

const (
	KindCreateDid Kind = iota
	KindAddKey
	KindRevokeKey
	KindDeactivateDid
	KindAddService
	KindRemoveService
	KindSetMetadata
	KindRemoveMetadata
	KindRotateKey
	KindUpdateRoles
	KindCreateStatusList
	KindSetStatus
	KindRegisterSchema
	KindDeprecateSchema
)

var kindNames = [...]string{
	KindCreateDid:        "create_did",
	KindAddKey:           "add_key",
	KindRevokeKey:        "revoke_key",
	KindDeactivateDid:    "deactivate_did",
	KindAddService:       "add_service",
	KindRemoveService:    "remove_service",
	KindSetMetadata:      "set_metadata",
	KindRemoveMetadata:   "remove_metadata",
	KindRotateKey:        "rotate_key",
	KindUpdateRoles:      "update_roles",
	KindCreateStatusList: "create_status_list",
	KindSetStatus:        "set_status",
	KindRegisterSchema:   "register_schema",
	KindDeprecateSchema:  "deprecate_schema",
}

// String renders kind as the command name used in logs, e.g. "rotate_key".
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Command is a field-exhaustive tagged union over every mutation the engine
// accepts. Exactly the fields relevant to Kind are populated; Apply ignores
// the rest.
type Command struct {
	Kind Kind

	// DID registry fields.
	DidIDBytes   []byte
	PublicKey    []byte
	OldPublicKey []byte
	NewPublicKey []byte
	Roles        []did.KeyRole
	Service      did.Service
	ServiceID    []byte
	MetadataEntry did.Metadata
	MetadataKey  []byte

	// Status-list fields.
	StatusListIDBytes []byte
	IssuerDid         []byte
	ListNonce         []byte
	ListLength        uint32
	StatusIndex       uint32
	Revoked           bool

	// Schema fields.
	SchemaIDBytes []byte
	SchemaJSON    []byte
	SchemaURI     []byte

	Signature []byte
}
