package ecdb

// TemplateID names a pre-built table signature an entity can be
// instantiated from, resolved by World.CreateEntityFromTemplate.
type TemplateID uint32

// removeComponentCommand queues a single component removal.
type removeComponentCommand struct {
	entity    Entity
	component ComponentID
}

// addComponentCommand queues a staged component add; bytes points into
// the World's arena and stays valid until the next dispatch boundary.
type addComponentCommand struct {
	entity    Entity
	component ComponentID
	bytes     []byte
}

// deleteEntityCommand queues an instantiated entity's destruction.
type deleteEntityCommand struct {
	entity Entity
}

// allocateEntityCommand queues a fresh row for an already id-allocated
// entity, either from a template or the default (reserved-components
// only) table.
type allocateEntityCommand struct {
	entity   Entity
	template TemplateID
	fromTmpl bool
}
