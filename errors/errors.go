// Package errors provides error handling for the DID state engine.
//
// It re-exports github.com/cockroachdb/errors for stack traces and wrapping,
// and defines one sentinel per error kind so callers can match with
// errors.Is regardless of how deep the wrap chain goes. Every engine-facing
// error returned by did/, statuslist/, and schema/ is (or wraps) one of the
// sentinels below.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping.
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// Error inspection.
var (
	Is     = crdb.Is
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Existence errors.
var (
	ErrDidAlreadyExists        = crdb.New("did already exists")
	ErrDidNotFound             = crdb.New("did not found")
	ErrKeyAlreadyExists        = crdb.New("key already exists")
	ErrKeyNotFound             = crdb.New("key not found")
	ErrServiceAlreadyExists    = crdb.New("service already exists")
	ErrServiceNotFound         = crdb.New("service not found")
	ErrMetadataNotFound        = crdb.New("metadata entry not found")
	ErrStatusListAlreadyExists = crdb.New("status list already exists")
	ErrStatusListNotFound      = crdb.New("status list not found")
	ErrSchemaAlreadyExists     = crdb.New("schema already exists")
	ErrSchemaNotFound          = crdb.New("schema not found")
)

// State errors.
var (
	ErrDidDeactivated    = crdb.New("did is deactivated")
	ErrKeyAlreadyRevoked = crdb.New("key already revoked")
	ErrSchemaDeprecated  = crdb.New("schema is deprecated")
	ErrIssuerMismatch    = crdb.New("issuer mismatch")
)

// Input errors.
var (
	ErrInvalidDidId           = crdb.New("invalid did id")
	ErrInvalidStatusListId    = crdb.New("invalid status list id")
	ErrInvalidSchemaId        = crdb.New("invalid schema id")
	ErrInvalidListNonce       = crdb.New("invalid list nonce")
	ErrStatusIndexOutOfBounds = crdb.New("status index out of bounds")
)

// Cryptographic errors.
var (
	ErrInvalidPublicKey    = crdb.New("invalid public key")
	ErrInvalidDidSignature = crdb.New("invalid did signature encoding")
	ErrInvalidSignature    = crdb.New("signature does not verify")
)

// Kind returns the sentinel's message for an error that wraps one of the
// sentinels above, or "" if err does not wrap a known sentinel. Used by the
// RPC layer to surface a stable error code without leaking stack traces.
func Kind(err error) string {
	for _, sentinel := range allSentinels {
		if crdb.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ""
}

var allSentinels = []error{
	ErrDidAlreadyExists, ErrDidNotFound, ErrKeyAlreadyExists, ErrKeyNotFound,
	ErrServiceAlreadyExists, ErrServiceNotFound, ErrMetadataNotFound,
	ErrStatusListAlreadyExists, ErrStatusListNotFound,
	ErrSchemaAlreadyExists, ErrSchemaNotFound,
	ErrDidDeactivated, ErrKeyAlreadyRevoked, ErrSchemaDeprecated, ErrIssuerMismatch,
	ErrInvalidDidId, ErrInvalidStatusListId, ErrInvalidSchemaId,
	ErrInvalidListNonce, ErrStatusIndexOutOfBounds,
	ErrInvalidPublicKey, ErrInvalidDidSignature, ErrInvalidSignature,
}
