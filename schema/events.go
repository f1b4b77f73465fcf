package schema

// Event is implemented by every event the schema registry emits on a
// successful command.
type Event interface{ isSchemaEvent() }

type SchemaRegistered struct {
	SchemaID  string
	IssuerDid []byte
}

type SchemaDeprecatedEvent struct {
	SchemaID  string
	IssuerDid []byte
}

func (SchemaRegistered) isSchemaEvent()      {}
func (SchemaDeprecatedEvent) isSchemaEvent() {}

// TargetID returns the textual schema id the event was applied against,
// for logging at the dispatch layer.
func (e SchemaRegistered) TargetID() string      { return e.SchemaID }
func (e SchemaDeprecatedEvent) TargetID() string { return e.SchemaID }
