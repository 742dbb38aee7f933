package ecdb

// This file exposes the minimal raw-row surface the level codec (package
// level) needs: creating a table for an archetype without going through
// entity creation, writing a row straight from column blobs (bypassing
// per-component defaults, since the blobs already hold real values), and
// reading every live row of a table back out the same way. None of it is
// useful outside a loader/saver, so it stays out of World's main API
// doc comment grouping.

// EntityComponentID returns the id of the reserved Entity column every
// entity-bearing table carries in column 0. Exported for the level codec,
// which excludes this column from a level file's component list: an
// entity's identity is not meaningful data to persist, since ImportLevel
// allocates a fresh one for every imported row.
func EntityComponentID() ComponentID { return entityComponentID }

// EnsureTable returns the table for the archetype formed by components,
// creating it if necessary. Exported for the level codec, which resolves
// components by name against the registry rather than holding typed
// AccessibleComponent[T] handles.
func (w *World) EnsureTable(components ...Component) TableID {
	return w.getOrCreateTable(Of(components...))
}

// ImportRow allocates a fresh entity id and a row in table tid, copying
// each entry of columnData (keyed by ComponentID) verbatim into its
// column, then, if the world has init hooks enabled, runs init hooks for
// every non-reserved column the table carries. This is preload_level's per-row path (spec.md §6): column
// bytes are copied straight from the level file, not built up through
// add_component.
func (w *World) ImportRow(tid TableID, columnData map[ComponentID][]byte) Entity {
	raw, _ := w.ids.Allocate()
	e := Entity{id: raw, World: w.id}
	tbl := w.db.mustTable(tid)
	row := tbl.addRow(e)
	for col, bytes := range columnData {
		tbl.setValueBytes(col, row, bytes)
	}
	w.entityMap.set(e.Index(), entityLocation{table: tid, row: row})
	if w.initHooksEnabled {
		for _, col := range tbl.columns {
			if isReserved(col) {
				continue
			}
			w.runInitHook(e, col, tbl, row)
		}
	}
	return e
}

// ExportTableRows defragments tid (export_level's "defragment each table
// first, then emit") and returns its live entities alongside a column-id
// keyed byte copy of each row, in the same order.
func (w *World) ExportTableRows(tid TableID) ([]Entity, []map[ComponentID][]byte) {
	tbl := w.db.mustTable(tid)
	tbl.Defragment(func(from, to RowID) {
		ptr, _ := tbl.valuePointer(entityComponentID, from)
		if ptr == nil {
			return
		}
		moved := *(*Entity)(ptr)
		w.entityMap.set(moved.Index(), entityLocation{table: tid, row: to})
	})

	var entities []Entity
	var rows []map[ComponentID][]byte
	for pi := 0; pi < tbl.NumPartitions(); pi++ {
		count := tbl.PartitionRowCount(pi)
		for r := 0; r < count; r++ {
			if !tbl.IsRowValid(pi, r) {
				continue
			}
			rid := RowID{Partition: uint16(pi), Index: uint16(r)}
			ptr, _ := tbl.valuePointer(entityComponentID, rid)
			if ptr == nil {
				continue
			}
			e := *(*Entity)(ptr)
			data := make(map[ComponentID][]byte, len(tbl.columns))
			for _, col := range tbl.columns {
				if col == entityComponentID {
					continue
				}
				data[col] = tbl.valueBytesCopy(col, rid)
			}
			entities = append(entities, e)
			rows = append(rows, data)
		}
	}
	return entities, rows
}
