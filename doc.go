/*
Package ecdb is an archetype-partitioned, column-oriented entity-component
database for game-engine runtimes, plus the Frame Pipeline that schedules
processors against it.

Entities are handles into a family of Tables; each Table stores one
component per column and splits its rows across fixed-capacity Partitions
to bound copy and migration cost. A World owns one Database of Tables,
an id pool, an entity map, deferred command queues, decay buffers, and a
Frame Pipeline. A Server owns up to 32 Worlds and drives their per-frame
phases.

Basic Usage:

	position := ecdb.FactoryNewComponent[Position]("Position")
	velocity := ecdb.FactoryNewComponent[Velocity]("Velocity")

	srv := ecdb.NewServer()
	world, _ := srv.CreateWorld(1)

	e := world.CreateEntity(true)
	world.AddComponent(e, position)
	world.AddComponent(e, velocity)

	proc := ecdb.NewProcessorBuilder("integrate-velocity").
		OnEvent(ecdb.EventOnFrame, 100).
		Including(ecdb.ReadOf(velocity), ecdb.WriteOf(position)).
		Run(func(w *ecdb.World, ds *ecdb.Dataset) {
			// ...
		}).
		Build()

	world.Pipeline().Attach(proc)

The sub-packages idpool and level factor out the entity-handle allocator
and the level import/export codec respectively; everything else lives in
this package because World, Database, Table and Pipeline are too tightly
coupled to separate without indirection that the spec does not ask for.
*/
package ecdb
