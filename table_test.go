package ecdb

import "testing"

type tblPosition struct{ X, Y float64 }

// TestTableNumRowsStableAcrossRemoveUntilDefragment matches the ground
// truth in original_source/tests/testgame/databasetest.cc: GetNumRows()
// stays unchanged immediately after removing every row, and only drops
// once Defragment compacts the table.
func TestTableNumRowsStableAcrossRemoveUntilDefragment(t *testing.T) {
	position := FactoryNewComponent[tblPosition]("table-test-position")

	db := newDatabase()
	tid := db.CreateTable(position)
	tbl, err := db.GetTable(tid)
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}

	var rows []RowID
	for i := 0; i < 10; i++ {
		rows = append(rows, tbl.addRow(Entity{}))
	}
	if tbl.NumRows() != 10 {
		t.Fatalf("expected 10 rows after inserts, got %d", tbl.NumRows())
	}

	for _, row := range rows {
		tbl.removeRow(row)
	}
	if tbl.NumRows() != 10 {
		t.Fatalf("NumRows should stay 10 immediately after removal (pre-defragment), got %d", tbl.NumRows())
	}

	tbl.Defragment(nil)
	if tbl.NumRows() != 0 {
		t.Fatalf("expected 0 rows after Defragment compacts the table, got %d", tbl.NumRows())
	}
}
