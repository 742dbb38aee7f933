package ecdb

// Position, Orientation and Scale are the reserved transform components
// every entity-bearing table carries in columns 1..3 (column 0 is the
// Entity itself). Games built on ecdb are expected to read/write these
// through the package-level PositionComponent/OrientationComponent/
// ScaleComponent handles rather than redeclaring their own.
type Position struct{ X, Y, Z float32 }
type Orientation struct{ X, Y, Z, W float32 }
type Scale struct{ X, Y, Z float32 }

var (
	entityComponentID ComponentID

	// PositionComponent, OrientationComponent and ScaleComponent are the
	// accessors for the reserved transform columns.
	PositionComponent    AccessibleComponent[Position]
	OrientationComponent AccessibleComponent[Orientation]
	ScaleComponent       AccessibleComponent[Scale]

	// reservedComponentIDs lists the four fixed leading columns, in
	// order, that every entity-bearing table begins with.
	reservedComponentIDs []ComponentID
)

func init() {
	entityComponentID = globalRegistry.Register("Entity", int(entitySize), nil, 0, nil, nil)
	PositionComponent = FactoryNewComponent[Position]("Position")
	OrientationComponent = FactoryNewComponent[Orientation]("Orientation")
	ScaleComponent = FactoryNewComponent[Scale]("Scale")
	reservedComponentIDs = []ComponentID{
		entityComponentID,
		PositionComponent.ID(),
		OrientationComponent.ID(),
		ScaleComponent.ID(),
	}
}
