package did

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quantum-Blockchains/qsb-node/chain"
	qerrors "github.com/Quantum-Blockchains/qsb-node/errors"
	"github.com/Quantum-Blockchains/qsb-node/identifier"
	"github.com/Quantum-Blockchains/qsb-node/internal/testkeys"
	"github.com/Quantum-Blockchains/qsb-node/store"
	"github.com/Quantum-Blockchains/qsb-node/wire"
)

func testChain() chain.Context {
	return chain.New([]byte("did-registry-test-genesis"))
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(store.NewMemory(), testChain())
}

func createTestDid(t *testing.T, r *Registry) (didText string, pub []byte, sign func([]byte) []byte) {
	t.Helper()
	pub, sign = testkeys.MintKeypair(t)
	payload, err := wire.NewPayload(PrefixCreate).Field(pub).Bytes()
	require.NoError(t, err)
	ev, err := r.CreateDid(pub, sign(payload))
	require.NoError(t, err)
	return ev.Did, pub, sign
}

func TestCreateDid(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, _ := createTestDid(t, r)
	assert.Contains(t, didText, identifier.DidTextPrefix)

	details, ok, err := r.Get(didText)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(0), details.Version)
	assert.False(t, details.Deactivated)
	require.Len(t, details.Keys, 1)
	assert.Equal(t, pub, details.Keys[0].PublicKey)
	assert.Equal(t, []KeyRole{RoleAuthentication}, details.Keys[0].Roles)
}

func TestCreateDidDuplicateRejected(t *testing.T) {
	r := newTestRegistry(t)
	pub, sign := testkeys.MintKeypair(t)
	payload, err := wire.NewPayload(PrefixCreate).Field(pub).Bytes()
	require.NoError(t, err)
	sig := sign(payload)

	_, err = r.CreateDid(pub, sig)
	require.NoError(t, err)

	_, err = r.CreateDid(pub, sig)
	assert.ErrorIs(t, err, qerrors.ErrDidAlreadyExists)
}

func TestCreateDidRejectsBadSignature(t *testing.T) {
	r := newTestRegistry(t)
	pub, _ := testkeys.MintKeypair(t)
	_, otherSign := testkeys.MintKeypair(t)
	payload, err := wire.NewPayload(PrefixCreate).Field(pub).Bytes()
	require.NoError(t, err)

	_, err = r.CreateDid(pub, otherSign(payload))
	assert.ErrorIs(t, err, qerrors.ErrInvalidSignature)
}

func TestGetUnknownDid(t *testing.T) {
	r := newTestRegistry(t)
	_, ok, err := r.Get("did:qsb:11111111111111111111111111111111")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddKey(t *testing.T) {
	r := newTestRegistry(t)
	didText, _, sign := createTestDid(t, r)
	newPub, _ := testkeys.MintKeypair(t)

	roles := []KeyRole{RoleAssertionMethod}
	payload, err := wire.NewPayload(PrefixAddKey).Field([]byte(didText)).Field(newPub).Field(roles).Bytes()
	require.NoError(t, err)

	ev, err := r.AddKey([]byte(didText), newPub, roles, sign(payload))
	require.NoError(t, err)
	assert.Equal(t, newPub, ev.PublicKey)

	details, _, err := r.Get(didText)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), details.Version)
	require.Len(t, details.Keys, 2)
}

func TestAddKeyRejectsDuplicateKey(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, sign := createTestDid(t, r)

	roles := []KeyRole{RoleAssertionMethod}
	payload, err := wire.NewPayload(PrefixAddKey).Field([]byte(didText)).Field(pub).Field(roles).Bytes()
	require.NoError(t, err)

	_, err = r.AddKey([]byte(didText), pub, roles, sign(payload))
	assert.ErrorIs(t, err, qerrors.ErrKeyAlreadyExists)
}

func TestRevokeKey(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, sign := createTestDid(t, r)

	payload, err := wire.NewPayload(PrefixRevokeKey).Field([]byte(didText)).Field(pub).Bytes()
	require.NoError(t, err)

	_, err = r.RevokeKey([]byte(didText), pub, sign(payload))
	require.NoError(t, err)

	details, _, err := r.Get(didText)
	require.NoError(t, err)
	require.Len(t, details.Keys, 1)
	assert.True(t, details.Keys[0].Revoked)
}

func TestRevokeKeyTwiceRejected(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, sign := createTestDid(t, r)
	newPub, newSign := testkeys.MintKeypair(t)

	// A second live key signs the repeat revocation: once pub is revoked it
	// can no longer authorize anything.
	addRoles := []KeyRole{RoleAuthentication}
	addPayload, err := wire.NewPayload(PrefixAddKey).Field([]byte(didText)).Field(newPub).Field(addRoles).Bytes()
	require.NoError(t, err)
	_, err = r.AddKey([]byte(didText), newPub, addRoles, sign(addPayload))
	require.NoError(t, err)

	payload, err := wire.NewPayload(PrefixRevokeKey).Field([]byte(didText)).Field(pub).Bytes()
	require.NoError(t, err)
	_, err = r.RevokeKey([]byte(didText), pub, sign(payload))
	require.NoError(t, err)

	_, err = r.RevokeKey([]byte(didText), pub, newSign(payload))
	assert.ErrorIs(t, err, qerrors.ErrKeyAlreadyRevoked)
}

func TestRevokeUnknownKeyRejected(t *testing.T) {
	r := newTestRegistry(t)
	didText, _, sign := createTestDid(t, r)
	other, _ := testkeys.MintKeypair(t)

	payload, err := wire.NewPayload(PrefixRevokeKey).Field([]byte(didText)).Field(other).Bytes()
	require.NoError(t, err)

	_, err = r.RevokeKey([]byte(didText), other, sign(payload))
	assert.ErrorIs(t, err, qerrors.ErrKeyNotFound)
}

func TestRotateKeyRendersOldKeyPowerless(t *testing.T) {
	r := newTestRegistry(t)
	didText, oldPub, oldSign := createTestDid(t, r)
	newPub, newSign := testkeys.MintKeypair(t)

	roles := []KeyRole{RoleAuthentication}
	payload, err := wire.NewPayload(PrefixRotateKey).
		Field([]byte(didText)).Field(oldPub).Field(newPub).Field(roles).Bytes()
	require.NoError(t, err)

	_, err = r.RotateKey([]byte(didText), oldPub, newPub, roles, oldSign(payload))
	require.NoError(t, err)

	details, _, err := r.Get(didText)
	require.NoError(t, err)
	require.Len(t, details.Keys, 2)
	assert.True(t, details.Keys[0].Revoked)
	assert.False(t, details.Keys[1].Revoked)

	// The old key can no longer authorize anything.
	deactivatePayload, err := wire.NewPayload(PrefixDeactivate).Field([]byte(didText)).Bytes()
	require.NoError(t, err)
	_, err = r.DeactivateDid([]byte(didText), oldSign(deactivatePayload))
	assert.ErrorIs(t, err, qerrors.ErrInvalidSignature)

	// The new key can.
	_, err = r.DeactivateDid([]byte(didText), newSign(deactivatePayload))
	require.NoError(t, err)
}

func TestDeactivateDidBlocksFurtherMutation(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, sign := createTestDid(t, r)

	deactivatePayload, err := wire.NewPayload(PrefixDeactivate).Field([]byte(didText)).Bytes()
	require.NoError(t, err)
	_, err = r.DeactivateDid([]byte(didText), sign(deactivatePayload))
	require.NoError(t, err)

	newPub, _ := testkeys.MintKeypair(t)
	roles := []KeyRole{RoleAssertionMethod}
	addPayload, err := wire.NewPayload(PrefixAddKey).Field([]byte(didText)).Field(newPub).Field(roles).Bytes()
	require.NoError(t, err)

	_, err = r.AddKey([]byte(didText), newPub, roles, sign(addPayload))
	assert.ErrorIs(t, err, qerrors.ErrDidDeactivated)
	_ = pub
}

func TestAddAndRemoveService(t *testing.T) {
	r := newTestRegistry(t)
	didText, _, sign := createTestDid(t, r)

	svc := Service{ID: []byte("svc-1"), ServiceType: []byte("Messaging"), Endpoint: []byte("https://example.org/inbox")}
	addPayload, err := wire.NewPayload(PrefixAddService).Field([]byte(didText)).Field(svc).Bytes()
	require.NoError(t, err)
	_, err = r.AddService([]byte(didText), svc, sign(addPayload))
	require.NoError(t, err)

	details, _, err := r.Get(didText)
	require.NoError(t, err)
	require.Len(t, details.Services, 1)

	removePayload, err := wire.NewPayload(PrefixRemoveService).Field([]byte(didText)).Field(svc.ID).Bytes()
	require.NoError(t, err)
	_, err = r.RemoveService([]byte(didText), svc.ID, sign(removePayload))
	require.NoError(t, err)

	details, _, err = r.Get(didText)
	require.NoError(t, err)
	assert.Empty(t, details.Services)
}

func TestRemoveServiceNotFound(t *testing.T) {
	r := newTestRegistry(t)
	didText, _, sign := createTestDid(t, r)

	removePayload, err := wire.NewPayload(PrefixRemoveService).Field([]byte(didText)).Field([]byte("nope")).Bytes()
	require.NoError(t, err)
	_, err = r.RemoveService([]byte(didText), []byte("nope"), sign(removePayload))
	assert.ErrorIs(t, err, qerrors.ErrServiceNotFound)
}

func TestSetAndRemoveMetadata(t *testing.T) {
	r := newTestRegistry(t)
	didText, _, sign := createTestDid(t, r)

	entry := Metadata{Key: []byte("label"), Value: []byte("alice")}
	setPayload, err := wire.NewPayload(PrefixSetMetadata).Field([]byte(didText)).Field(entry).Bytes()
	require.NoError(t, err)
	_, err = r.SetMetadata([]byte(didText), entry, sign(setPayload))
	require.NoError(t, err)

	entry2 := Metadata{Key: []byte("label"), Value: []byte("bob")}
	setPayload2, err := wire.NewPayload(PrefixSetMetadata).Field([]byte(didText)).Field(entry2).Bytes()
	require.NoError(t, err)
	_, err = r.SetMetadata([]byte(didText), entry2, sign(setPayload2))
	require.NoError(t, err)

	details, _, err := r.Get(didText)
	require.NoError(t, err)
	require.Len(t, details.Metadata, 1, "overwriting an existing key must not append")
	assert.Equal(t, []byte("bob"), details.Metadata[0].Value)

	removePayload, err := wire.NewPayload(PrefixRemoveMetadata).Field([]byte(didText)).Field(entry.Key).Bytes()
	require.NoError(t, err)
	_, err = r.RemoveMetadata([]byte(didText), entry.Key, sign(removePayload))
	require.NoError(t, err)

	details, _, err = r.Get(didText)
	require.NoError(t, err)
	assert.Empty(t, details.Metadata)
}

func TestUpdateRoles(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, sign := createTestDid(t, r)

	newRoles := []KeyRole{RoleCapabilityInvocation, RoleCapabilityDelegation}
	payload, err := wire.NewPayload(PrefixUpdateRoles).Field([]byte(didText)).Field(pub).Field(newRoles).Bytes()
	require.NoError(t, err)

	_, err = r.UpdateRoles([]byte(didText), pub, newRoles, sign(payload))
	require.NoError(t, err)

	details, _, err := r.Get(didText)
	require.NoError(t, err)
	assert.Equal(t, newRoles, details.Keys[0].Roles)
}

func TestUpdateRolesRejectsRevokedKey(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, sign := createTestDid(t, r)
	newPub, newSign := testkeys.MintKeypair(t)

	addRoles := []KeyRole{RoleAuthentication}
	addPayload, err := wire.NewPayload(PrefixAddKey).Field([]byte(didText)).Field(newPub).Field(addRoles).Bytes()
	require.NoError(t, err)
	_, err = r.AddKey([]byte(didText), newPub, addRoles, sign(addPayload))
	require.NoError(t, err)

	revokePayload, err := wire.NewPayload(PrefixRevokeKey).Field([]byte(didText)).Field(pub).Bytes()
	require.NoError(t, err)
	_, err = r.RevokeKey([]byte(didText), pub, newSign(revokePayload))
	require.NoError(t, err)

	rolesPayload, err := wire.NewPayload(PrefixUpdateRoles).Field([]byte(didText)).Field(pub).Field(addRoles).Bytes()
	require.NoError(t, err)
	_, err = r.UpdateRoles([]byte(didText), pub, addRoles, newSign(rolesPayload))
	assert.ErrorIs(t, err, qerrors.ErrKeyAlreadyRevoked)
}

func TestFailedCommandLeavesStateUntouched(t *testing.T) {
	r := newTestRegistry(t)
	didText, pub, sign := createTestDid(t, r)

	before, _, err := r.Get(didText)
	require.NoError(t, err)

	// RemoveService on a DID with no services must fail without mutating
	// version or any other field.
	payload, err := wire.NewPayload(PrefixRemoveService).Field([]byte(didText)).Field([]byte("x")).Bytes()
	require.NoError(t, err)
	_, err = r.RemoveService([]byte(didText), []byte("x"), sign(payload))
	require.Error(t, err)

	after, _, err := r.Get(didText)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Keys, after.Keys)
	_ = pub
}
