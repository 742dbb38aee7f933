package level

import (
	"testing"

	"github.com/TheBitDrifter/ecdb"
)

type levelPosition struct{ X, Y float64 }
type levelHealth struct{ Current, Max int32 }

func newTestWorld(hash ecdb.WorldHash) *ecdb.World {
	srv := ecdb.NewServer()
	w, err := srv.CreateWorld(hash)
	if err != nil {
		panic(err)
	}
	return w
}

func TestExportImportLevelRoundTrip(t *testing.T) {
	position := ecdb.FactoryNewComponent[levelPosition]("level-io-test-position")
	health := ecdb.FactoryNewComponent[levelHealth]("level-io-test-health")

	src := newTestWorld(1)
	e1 := src.CreateEntity(true)
	if _, err := ecdb.AddComponentValue(src, e1, position, levelPosition{X: 1, Y: 2}); err != nil {
		t.Fatalf("AddComponentValue position: %v", err)
	}
	if _, err := ecdb.AddComponentValue(src, e1, health, levelHealth{Current: 10, Max: 10}); err != nil {
		t.Fatalf("AddComponentValue health: %v", err)
	}
	e2 := src.CreateEntity(true)
	if _, err := ecdb.AddComponentValue(src, e2, position, levelPosition{X: 3, Y: 4}); err != nil {
		t.Fatalf("AddComponentValue position (e2): %v", err)
	}
	src.ManageEntities()

	lvl, err := ExportLevel(src)
	if err != nil {
		t.Fatalf("ExportLevel: %v", err)
	}
	if len(lvl.Groups) == 0 {
		t.Fatal("expected at least one exported group")
	}

	data, err := Encode(lvl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	roundTripped, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	dst := newTestWorld(2)
	if err := ImportLevel(dst, roundTripped); err != nil {
		t.Fatalf("ImportLevel: %v", err)
	}

	ds := dst.Query(ecdb.NewFilterBuilder().Including(ecdb.ReadOf(position)).Build())
	var total int
	for _, view := range ds.Views {
		total += view.Count
	}
	if total != 2 {
		t.Fatalf("imported %d rows carrying position, want 2", total)
	}
}

func TestImportLevelPanicsOnSchemaDrift(t *testing.T) {
	_ = ecdb.FactoryNewComponent[levelPosition]("level-io-test-drift-position")
	dst := newTestWorld(3)

	lvl := &Level{
		Components: []ComponentDesc{
			{
				Name:     "level-io-test-drift-position",
				TypeSize: 9999, // does not match the live levelPosition size
				Fields:   []FieldDesc{{Name: "X"}, {Name: "Y"}},
			},
		},
		Groups: []EntityGroup{
			{ComponentIndices: []int{0}, NumRows: 1, ColumnBlobs: [][]byte{make([]byte, 9999)}},
		},
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected ImportLevel to panic on a component that drifted in typeSize")
		}
	}()
	_ = ImportLevel(dst, lvl)
}

func TestDescribeComponentRecordsFields(t *testing.T) {
	position := ecdb.FactoryNewComponent[levelPosition]("level-io-test-describe-position")
	desc := describeComponent(position.ID())
	if desc.Name != "level-io-test-describe-position" {
		t.Fatalf("name = %q", desc.Name)
	}
	if len(desc.Fields) != 2 {
		t.Fatalf("fields = %+v, want 2 (X, Y)", desc.Fields)
	}
}
