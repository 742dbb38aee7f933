// Package level implements the binary level-file container described in
// spec.md §6: component descriptions, entity groups of packed column
// blobs, and a string table section.
package level

// FieldFeature drives post-deserialization patching for one field of a
// component.
type FieldFeature uint8

const (
	// FeatureUndefined fields are copied verbatim, no patching.
	FeatureUndefined FieldFeature = iota
	// FeatureStringAtom marks a Go string field. ExportLevel and
	// ImportLevel copy its bytes verbatim; they are not replaced by
	// offsets into Level.Strings.
	FeatureStringAtom
	// FeatureEntityID marks an ecdb.Entity field. Its bytes are copied
	// verbatim; entity ids are not remapped across a load.
	FeatureEntityID
)

// FieldDesc names one field of a component and the feature (if any)
// that drives special handling of its bytes.
type FieldDesc struct {
	Name    string
	Feature FieldFeature
}

// ComponentDesc describes one component kind as it appears in the file,
// independent of the live process's registry — this is what makes the
// format schema-evolved: a loader reconciles file components against
// registered ones by name, not by assuming identical indices.
type ComponentDesc struct {
	Name     string
	TypeSize int
	Fields   []FieldDesc
}

// EntityGroup is one archetype's worth of rows: which component
// descriptions (by index into Level.Components) the rows carry, how many
// rows, and one tightly packed column blob per component, each
// NumRows*TypeSize bytes long, in the same order as ComponentIndices.
type EntityGroup struct {
	ComponentIndices []int
	NumRows          int
	ColumnBlobs      [][]byte
}

// Level is the fully decoded, in-memory form of a level file: component
// descriptions, entity groups, and a string table. Encode and Decode
// carry Strings as given; ExportLevel leaves it empty and ImportLevel
// does not read it, and string-atom fields inside ColumnBlobs hold the
// raw bytes of the live values.
type Level struct {
	Components []ComponentDesc
	Groups     []EntityGroup
	Strings    []string
}
