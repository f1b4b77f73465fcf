package engine

import (
	"github.com/Quantum-Blockchains/qsb-node/chain"
	"github.com/Quantum-Blockchains/qsb-node/did"
	"github.com/Quantum-Blockchains/qsb-node/errors"
	"github.com/Quantum-Blockchains/qsb-node/logger"
	"github.com/Quantum-Blockchains/qsb-node/schema"
	"github.com/Quantum-Blockchains/qsb-node/statuslist"
	"github.com/Quantum-Blockchains/qsb-node/store"
)

// Engine is the top-level state-transition function: (state, command) →
// (state', event | error). It owns one registry per entity kind, all
// sharing one Store and one chain.Context.
type Engine struct {
	Did        *did.Registry
	StatusList *statuslist.Registry
	Schema     *schema.Registry
}

// New builds an Engine over s, bound to ctx's genesis discriminator.
func New(s store.Store, ctx chain.Context) *Engine {
	return &Engine{
		Did:        did.New(s, ctx),
		StatusList: statuslist.New(s, ctx),
		Schema:     schema.New(s, ctx),
	}
}

// targetIder is implemented by every event the three registries emit,
// giving Apply a uniform way to pull the id out of whichever concrete
// event type a command produced.
type targetIder interface {
	TargetID() string
}

// Apply dispatches cmd to the registry its Kind names and returns the
// resulting event, or the first error any check failed with. On error, no
// registry state has changed. Every call logs exactly one line: Info with
// the resulting version on success, Warn with the error kind on rejection.
func (e *Engine) Apply(cmd Command) (interface{}, error) {
	result, err := e.dispatch(cmd)
	if err != nil {
		logger.Warnw("command rejected", "command", cmd.Kind.String(), "error_kind", errors.Kind(err))
		return nil, err
	}

	target := ""
	if t, ok := result.(targetIder); ok {
		target = t.TargetID()
	}
	logger.Infow("command applied", "command", cmd.Kind.String(), "target", target, "version", e.versionOf(cmd.Kind, target))
	return result, nil
}

func (e *Engine) dispatch(cmd Command) (interface{}, error) {
	switch cmd.Kind {
	case KindCreateDid:
		return e.Did.CreateDid(cmd.PublicKey, cmd.Signature)
	case KindAddKey:
		return e.Did.AddKey(cmd.DidIDBytes, cmd.PublicKey, cmd.Roles, cmd.Signature)
	case KindRevokeKey:
		return e.Did.RevokeKey(cmd.DidIDBytes, cmd.PublicKey, cmd.Signature)
	case KindDeactivateDid:
		return e.Did.DeactivateDid(cmd.DidIDBytes, cmd.Signature)
	case KindAddService:
		return e.Did.AddService(cmd.DidIDBytes, cmd.Service, cmd.Signature)
	case KindRemoveService:
		return e.Did.RemoveService(cmd.DidIDBytes, cmd.ServiceID, cmd.Signature)
	case KindSetMetadata:
		return e.Did.SetMetadata(cmd.DidIDBytes, cmd.MetadataEntry, cmd.Signature)
	case KindRemoveMetadata:
		return e.Did.RemoveMetadata(cmd.DidIDBytes, cmd.MetadataKey, cmd.Signature)
	case KindRotateKey:
		return e.Did.RotateKey(cmd.DidIDBytes, cmd.OldPublicKey, cmd.NewPublicKey, cmd.Roles, cmd.Signature)
	case KindUpdateRoles:
		return e.Did.UpdateRoles(cmd.DidIDBytes, cmd.PublicKey, cmd.Roles, cmd.Signature)
	case KindCreateStatusList:
		return e.StatusList.CreateStatusList(cmd.IssuerDid, cmd.ListNonce, cmd.ListLength, cmd.Signature)
	case KindSetStatus:
		return e.StatusList.SetStatus(cmd.StatusListIDBytes, cmd.IssuerDid, cmd.StatusIndex, cmd.Revoked, cmd.Signature)
	case KindRegisterSchema:
		return e.Schema.RegisterSchema(cmd.SchemaJSON, cmd.SchemaURI, cmd.IssuerDid, cmd.Signature)
	case KindDeprecateSchema:
		return e.Schema.DeprecateSchema(cmd.SchemaIDBytes, cmd.IssuerDid, cmd.Signature)
	default:
		return nil, errors.Newf("engine: unknown command kind %d", cmd.Kind)
	}
}

// versionOf re-reads target's current version for the log line. A lookup
// failure (which should not happen for a command that just succeeded
// against the same target) logs as version 0 rather than failing Apply.
func (e *Engine) versionOf(kind Kind, target string) uint64 {
	switch kind {
	case KindCreateDid, KindAddKey, KindRevokeKey, KindDeactivateDid, KindAddService,
		KindRemoveService, KindSetMetadata, KindRemoveMetadata, KindRotateKey, KindUpdateRoles:
		if d, ok, err := e.Did.Get(target); err == nil && ok {
			return d.Version
		}
	case KindCreateStatusList, KindSetStatus:
		if d, ok, err := e.StatusList.Get(target); err == nil && ok {
			return d.Version
		}
	case KindRegisterSchema, KindDeprecateSchema:
		if d, ok, err := e.Schema.Get(target); err == nil && ok {
			return d.Version
		}
	}
	return 0
}
