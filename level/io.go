package level

import (
	"reflect"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/ecdb"
	"go.uber.org/zap"
)

// fieldFeatureOf inspects a struct field's Go type and decides which
// FieldFeature the file format records for it: string fields are
// atom-candidates, ecdb.Entity fields carry a cross-world wire form,
// everything else round-trips as raw bytes. Only FeatureUndefined
// fields are patched by this implementation today; string_atom/
// entity_id are recorded for schema-evolution purposes but still copy
// their bytes verbatim (no separate string-table interning of
// in-struct string fields, no entity-id remap across a load).
func fieldFeatureOf(f reflect.StructField) FieldFeature {
	switch {
	case f.Type.Kind() == reflect.String:
		return FeatureStringAtom
	case f.Type == reflect.TypeOf(ecdb.Entity{}):
		return FeatureEntityID
	default:
		return FeatureUndefined
	}
}

func describeComponent(id ecdb.ComponentID) ComponentDesc {
	reg := ecdb.Registry()
	var fields []FieldDesc
	if goType := reg.GoTypeOf(id); goType != nil && goType.Kind() == reflect.Struct {
		for i := 0; i < goType.NumField(); i++ {
			f := goType.Field(i)
			fields = append(fields, FieldDesc{Name: f.Name, Feature: fieldFeatureOf(f)})
		}
	}
	return ComponentDesc{Name: reg.NameOf(id), TypeSize: reg.SizeOf(id), Fields: fields}
}

// ExportLevel defragments and serializes every table of w's database
// into a Level: one EntityGroup per table, one ComponentDesc per
// distinct component referenced across all tables, column bytes copied
// verbatim. The reserved Position/Orientation/Scale transform columns
// are included like any other component; the reserved Entity column
// (spec.md §3's column 0) is not, since an entity's identity is not
// meaningful data to persist — ImportLevel allocates a fresh id for
// every row it creates, as spec.md's preload_level describes.
func ExportLevel(w *ecdb.World) (*Level, error) {
	lvl := &Level{}
	componentIndex := make(map[ecdb.ComponentID]int)
	entityID := ecdb.EntityComponentID()

	db := w.Database()
	db.ForEachTable(func(t *ecdb.Table) {
		_, rows := w.ExportTableRows(t.ID())

		var cols []ecdb.ComponentID
		for _, col := range t.Columns() {
			if col == entityID {
				continue
			}
			cols = append(cols, col)
		}

		compIdxs := make([]int, len(cols))
		for ci, col := range cols {
			idx, ok := componentIndex[col]
			if !ok {
				idx = len(lvl.Components)
				lvl.Components = append(lvl.Components, describeComponent(col))
				componentIndex[col] = idx
			}
			compIdxs[ci] = idx
		}

		blobs := make([][]byte, len(cols))
		for ci, col := range cols {
			size := ecdb.Registry().SizeOf(col)
			blob := make([]byte, len(rows)*size)
			if size > 0 {
				for r, row := range rows {
					if data := row[col]; len(data) == size {
						copy(blob[r*size:(r+1)*size], data)
					}
				}
			}
			blobs[ci] = blob
		}

		lvl.Groups = append(lvl.Groups, EntityGroup{
			ComponentIndices: compIdxs,
			NumRows:          len(rows),
			ColumnBlobs:      blobs,
		})
	})

	return lvl, nil
}

// assertNoSchemaDrift panics with a SchemaDriftError if cd (the file's
// description of a still-registered component) disagrees with the live
// registry entry on byte size or field count — spec.md §6 requires this
// to assert rather than load, since setValueBytes would otherwise copy
// a mismatched byte count in and silently corrupt the column.
func assertNoSchemaDrift(cd ComponentDesc, c ecdb.Component) {
	reg := ecdb.Registry()
	liveSize := reg.SizeOf(c.ID())
	liveFields := 0
	if goType := reg.GoTypeOf(c.ID()); goType != nil && goType.Kind() == reflect.Struct {
		liveFields = goType.NumField()
	}
	if cd.TypeSize != liveSize || len(cd.Fields) != liveFields {
		panic(bark.AddTrace(ecdb.SchemaDriftError{
			Component:     cd.Name,
			FileTypeSize:  cd.TypeSize,
			LiveTypeSize:  liveSize,
			FileNumFields: len(cd.Fields),
			LiveNumFields: liveFields,
		}))
	}
}

// ImportLevel reconciles lvl's component descriptions against w's
// process-wide registry by name (the schema-evolution point spec.md §6
// calls for — a component present in the file but no longer registered
// is skipped with a warning, rather than failing the whole load), and
// asserts on drift for one that is still registered but changed shape
// (spec.md §6: "field count, typeSize" drift asserts on load).
// Allocates one destination table per group, copies column bytes
// verbatim, and runs init hooks for every imported row.
func ImportLevel(w *ecdb.World, lvl *Level) error {
	resolved := make([]ecdb.Component, len(lvl.Components))
	for i, cd := range lvl.Components {
		c, ok := ecdb.ComponentByName(cd.Name)
		if !ok {
			ecdb.Config.Logger().Warn("level: component no longer registered, skipping", zap.String("component", cd.Name))
			continue
		}
		assertNoSchemaDrift(cd, c)
		resolved[i] = c
	}

	for _, group := range lvl.Groups {
		var comps []ecdb.Component
		var blobIDs []ecdb.ComponentID
		var blobs [][]byte
		for ci, compIdx := range group.ComponentIndices {
			c := resolved[compIdx]
			if c == nil {
				continue
			}
			comps = append(comps, c)
			blobIDs = append(blobIDs, c.ID())
			blobs = append(blobs, group.ColumnBlobs[ci])
		}
		tid := w.EnsureTable(comps...)

		for r := 0; r < group.NumRows; r++ {
			data := make(map[ecdb.ComponentID][]byte, len(blobIDs))
			for i, id := range blobIDs {
				size := ecdb.Registry().SizeOf(id)
				if size == 0 {
					continue
				}
				blob := blobs[i]
				if len(blob) < (r+1)*size {
					continue
				}
				data[id] = append([]byte(nil), blob[r*size:(r+1)*size]...)
			}
			w.ImportRow(tid, data)
		}
	}
	return nil
}
