package ecdb

import "testing"

type dbPosition struct{ X, Y float64 }
type dbVelocity struct{ X, Y float64 }

func TestDatabaseCreateTableDedupesBySignature(t *testing.T) {
	position := FactoryNewComponent[dbPosition]("database-test-position")
	velocity := FactoryNewComponent[dbVelocity]("database-test-velocity")

	db := newDatabase()
	a := db.CreateTable(position, velocity)
	b := db.CreateTable(velocity, position)

	if a != b {
		t.Fatalf("expected the same table for the same archetype regardless of argument order, got %d and %d", a, b)
	}
}

func TestDatabaseQueryMatchesInclusiveExcludesExclusive(t *testing.T) {
	position := FactoryNewComponent[dbPosition]("database-test-query-position")
	velocity := FactoryNewComponent[dbVelocity]("database-test-query-velocity")

	db := newDatabase()
	both := db.CreateTable(position, velocity)
	posOnly := db.CreateTable(position)

	withPosition := db.Query(Of(position), Signature{})
	found := map[TableID]bool{}
	for _, id := range withPosition {
		found[id] = true
	}
	if !found[both] || !found[posOnly] {
		t.Fatalf("expected both tables carrying position, got %v", withPosition)
	}

	withoutVelocity := db.Query(Of(position), Of(velocity))
	for _, id := range withoutVelocity {
		if id == both {
			t.Fatal("table carrying velocity should be excluded")
		}
	}
}

func TestDatabaseResetKeepsTableShellsButDropsRows(t *testing.T) {
	position := FactoryNewComponent[dbPosition]("database-test-reset-position")

	db := newDatabase()
	tid := db.CreateTable(position)
	tbl, err := db.GetTable(tid)
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	tbl.addRow(Entity{})
	if tbl.NumRows() != 1 {
		t.Fatalf("expected 1 row before reset, got %d", tbl.NumRows())
	}

	db.Reset()
	if !db.IsValid(tid) {
		t.Fatal("table shell should survive Reset")
	}
	tbl, _ = db.GetTable(tid)
	if tbl.NumRows() != 0 {
		t.Fatalf("expected 0 rows after reset, got %d", tbl.NumRows())
	}
}

func TestDatabaseCopyDeepClonesRows(t *testing.T) {
	position := FactoryNewComponent[dbPosition]("database-test-copy-position")

	src := newDatabase()
	tid := src.CreateTable(position)
	tbl, _ := src.GetTable(tid)
	tbl.addRow(Entity{})

	dst := newDatabase()
	src.Copy(dst)

	dstTbl, err := dst.GetTable(tid)
	if err != nil {
		t.Fatalf("GetTable on copy: %v", err)
	}
	if dstTbl.NumRows() != 1 {
		t.Fatalf("expected the copy to carry the same row count, got %d", dstTbl.NumRows())
	}

	dstTbl.addRow(Entity{})
	srcTbl, _ := src.GetTable(tid)
	if srcTbl.NumRows() != 1 {
		t.Fatal("mutating the copy must not affect the source")
	}
}
