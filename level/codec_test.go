package level

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	lvl := &Level{
		Components: []ComponentDesc{
			{Name: "Position", TypeSize: 16, Fields: []FieldDesc{
				{Name: "X", Feature: FeatureUndefined},
				{Name: "Y", Feature: FeatureUndefined},
			}},
			{Name: "Name", TypeSize: 8, Fields: []FieldDesc{
				{Name: "Value", Feature: FeatureStringAtom},
			}},
		},
		Groups: []EntityGroup{
			{
				ComponentIndices: []int{0, 1},
				NumRows:          2,
				ColumnBlobs: [][]byte{
					make([]byte, 32),
					make([]byte, 16),
				},
			},
		},
		Strings: []string{"hello", "world"},
	}

	data, err := Encode(lvl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Components) != len(lvl.Components) {
		t.Fatalf("got %d components, want %d", len(got.Components), len(lvl.Components))
	}
	if got.Components[0].Name != "Position" || got.Components[0].TypeSize != 16 {
		t.Fatalf("component 0 = %+v", got.Components[0])
	}
	if len(got.Components[0].Fields) != 2 {
		t.Fatalf("component 0 fields = %+v", got.Components[0].Fields)
	}
	if len(got.Groups) != 1 || got.Groups[0].NumRows != 2 {
		t.Fatalf("groups = %+v", got.Groups)
	}
	if len(got.Strings) != 2 || got.Strings[0] != "hello" || got.Strings[1] != "world" {
		t.Fatalf("strings = %v", got.Strings)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a level file")); err == nil {
		t.Fatal("expected an error decoding non-level data")
	}
}

func TestDecodeRejectsCorruptedChecksum(t *testing.T) {
	lvl := &Level{Strings: []string{"a"}}
	data, err := Encode(lvl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0xFF
	if _, err := Decode(corrupt); err == nil {
		t.Fatal("expected a checksum mismatch error on corrupted payload")
	}
}
