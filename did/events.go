package did

// Event is implemented by every event the DID registry emits on a
// successful command. Consumers index events by DID textual form.
type Event interface{ isDidEvent() }

type DidCreated struct{ Did string }
type KeyAdded struct {
	Did       string
	PublicKey []byte
}
type KeyRevoked struct {
	Did       string
	PublicKey []byte
}
type DidDeactivated struct{ Did string }
type KeyRotated struct {
	Did                        string
	OldPublicKey, NewPublicKey []byte
}
type RolesUpdated struct {
	Did       string
	PublicKey []byte
}
type ServiceAdded struct {
	Did       string
	ServiceID []byte
}
type ServiceRemoved struct {
	Did       string
	ServiceID []byte
}
type MetadataSet struct {
	Did string
	Key []byte
}
type MetadataRemoved struct {
	Did string
	Key []byte
}

func (DidCreated) isDidEvent()      {}
func (KeyAdded) isDidEvent()        {}
func (KeyRevoked) isDidEvent()      {}
func (DidDeactivated) isDidEvent()  {}
func (KeyRotated) isDidEvent()      {}
func (RolesUpdated) isDidEvent()    {}
func (ServiceAdded) isDidEvent()    {}
func (ServiceRemoved) isDidEvent()  {}
func (MetadataSet) isDidEvent()     {}
func (MetadataRemoved) isDidEvent() {}

// TargetID returns the textual DID the event was applied against, for
// logging at the dispatch layer.
func (e DidCreated) TargetID() string      { return e.Did }
func (e KeyAdded) TargetID() string        { return e.Did }
func (e KeyRevoked) TargetID() string      { return e.Did }
func (e DidDeactivated) TargetID() string  { return e.Did }
func (e KeyRotated) TargetID() string      { return e.Did }
func (e RolesUpdated) TargetID() string    { return e.Did }
func (e ServiceAdded) TargetID() string    { return e.Did }
func (e ServiceRemoved) TargetID() string  { return e.Did }
func (e MetadataSet) TargetID() string     { return e.Did }
func (e MetadataRemoved) TargetID() string { return e.Did }
