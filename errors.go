package ecdb

import "fmt"

// TableNotFoundError reports a lookup against a signature with no table.
type TableNotFoundError struct {
	Signature Signature
}

func (e TableNotFoundError) Error() string {
	return fmt.Sprintf("no table for signature %v", e.Signature)
}

// ComponentNotRegisteredError reports a component id with no registry entry.
type ComponentNotRegisteredError struct {
	ID ComponentID
}

func (e ComponentNotRegisteredError) Error() string {
	return fmt.Sprintf("component id %d is not registered", e.ID)
}

// ComponentExistsError reports a duplicate add of an already-present component.
type ComponentExistsError struct {
	Entity    Entity
	Component ComponentID
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("entity %v already has component %d", e.Entity, e.Component)
}

// ComponentMissingError reports an operation against a component the entity
// does not carry.
type ComponentMissingError struct {
	Entity    Entity
	Component ComponentID
}

func (e ComponentMissingError) Error() string {
	return fmt.Sprintf("entity %v does not have component %d", e.Entity, e.Component)
}

// InvalidEntityError reports use of a stale or zero-value entity handle.
type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("entity handle %v is invalid (stale generation or zero value)", e.Entity)
}

// PartitionFullError is returned internally when a caller attempts to add
// a row to a partition already at capacity; callers always allocate a new
// partition instead of observing this, so it should never surface.
type PartitionFullError struct {
	Capacity int
}

func (e PartitionFullError) Error() string {
	return fmt.Sprintf("partition is at capacity (%d rows)", e.Capacity)
}

// RowNotFoundError reports an operation against a RowId with no live row.
type RowNotFoundError struct {
	Row RowID
}

func (e RowNotFoundError) Error() string {
	return fmt.Sprintf("row %v is not valid", e.Row)
}

// WorldCapacityError is returned by Server.CreateWorld once Config.maxWorlds
// (32 by default) worlds have been created on that Server.
type WorldCapacityError struct {
	Max int
}

func (e WorldCapacityError) Error() string {
	return fmt.Sprintf("server already hosts the maximum of %d worlds", e.Max)
}

// WorldNotFoundError reports a lookup by WorldHash with no matching world.
type WorldNotFoundError struct {
	Hash WorldHash
}

func (e WorldNotFoundError) Error() string {
	return fmt.Sprintf("no world registered under hash %d", e.Hash)
}

// TemplateNotFoundError describes an unknown template id.
// CreateEntityFromTemplate does not return it: for an unknown template id
// it logs a warning and returns InvalidEntity.
type TemplateNotFoundError struct {
	Template TemplateID
}

func (e TemplateNotFoundError) Error() string {
	return fmt.Sprintf("no template registered under id %d", e.Template)
}

// AsyncContextError reports a forbidden call (get/set/structural mutation
// of an arbitrary entity) made from inside an async batch's processor.
type AsyncContextError struct {
	Operation string
}

func (e AsyncContextError) Error() string {
	return fmt.Sprintf("%s is not permitted from an async processor", e.Operation)
}

// SchemaDriftError reports a level-file component description that no
// longer matches the live registry entry registered under the same
// name (spec.md §6: "field count, typeSize" drift asserts on load).
type SchemaDriftError struct {
	Component     string
	FileTypeSize  int
	LiveTypeSize  int
	FileNumFields int
	LiveNumFields int
}

func (e SchemaDriftError) Error() string {
	return fmt.Sprintf(
		"level: component %q drifted from its file description (typeSize %d->%d, fields %d->%d)",
		e.Component, e.FileTypeSize, e.LiveTypeSize, e.FileNumFields, e.LiveNumFields,
	)
}
