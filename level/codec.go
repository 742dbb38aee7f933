package level

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// magic identifies an ecdb level file and lets Decode fail fast on
// garbage input instead of on a confusing zstd error.
var magic = [8]byte{'E', 'C', 'D', 'B', 'L', 'V', 'L', '1'}

// Encode serializes lvl into its on-disk form: a magic header, an
// xxhash64 checksum of the uncompressed body, and a zstd-compressed
// payload holding the three sections in order (components, groups,
// strings) per spec.md §6.
func Encode(lvl *Level) ([]byte, error) {
	var raw bytes.Buffer
	if err := writeComponents(&raw, lvl.Components); err != nil {
		return nil, err
	}
	if err := writeGroups(&raw, lvl.Groups); err != nil {
		return nil, err
	}
	if err := writeStrings(&raw, lvl.Strings); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("level: zstd writer: %w", err)
	}
	compressed := enc.EncodeAll(raw.Bytes(), nil)
	enc.Close()

	checksum := xxhash.Sum64(raw.Bytes())

	var out bytes.Buffer
	out.Write(magic[:])
	binary.Write(&out, binary.LittleEndian, checksum)
	out.Write(compressed)
	return out.Bytes(), nil
}

// Decode parses a level file produced by Encode, verifying the magic
// header and the body checksum before returning.
func Decode(data []byte) (*Level, error) {
	if len(data) < len(magic)+8 || !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("level: not an ecdb level file")
	}
	checksum := binary.LittleEndian.Uint64(data[len(magic) : len(magic)+8])
	compressed := data[len(magic)+8:]

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("level: zstd reader: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("level: decompress: %w", err)
	}
	if xxhash.Sum64(raw) != checksum {
		return nil, fmt.Errorf("level: checksum mismatch, file is corrupt")
	}

	r := bytes.NewReader(raw)
	components, err := readComponents(r)
	if err != nil {
		return nil, err
	}
	groups, err := readGroups(r)
	if err != nil {
		return nil, err
	}
	strs, err := readStrings(r)
	if err != nil {
		return nil, err
	}
	return &Level{Components: components, Groups: groups, Strings: strs}, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeComponents(w io.Writer, comps []ComponentDesc) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(comps))); err != nil {
		return err
	}
	for _, c := range comps {
		if err := writeString(w, c.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(c.TypeSize)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(c.Fields))); err != nil {
			return err
		}
		for _, f := range c.Fields {
			if err := writeString(w, f.Name); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, f.Feature); err != nil {
				return err
			}
		}
	}
	return nil
}

func readComponents(r io.Reader) ([]ComponentDesc, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	out := make([]ComponentDesc, count)
	for i := range out {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		var numFields uint32
		if err := binary.Read(r, binary.LittleEndian, &numFields); err != nil {
			return nil, err
		}
		fields := make([]FieldDesc, numFields)
		for j := range fields {
			fname, err := readString(r)
			if err != nil {
				return nil, err
			}
			var feature FieldFeature
			if err := binary.Read(r, binary.LittleEndian, &feature); err != nil {
				return nil, err
			}
			fields[j] = FieldDesc{Name: fname, Feature: feature}
		}
		out[i] = ComponentDesc{Name: name, TypeSize: int(size), Fields: fields}
	}
	return out, nil
}

func writeGroups(w io.Writer, groups []EntityGroup) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(groups))); err != nil {
		return err
	}
	for _, g := range groups {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(g.ComponentIndices))); err != nil {
			return err
		}
		for _, ci := range g.ComponentIndices {
			if err := binary.Write(w, binary.LittleEndian, uint32(ci)); err != nil {
				return err
			}
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(g.NumRows)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(g.ColumnBlobs))); err != nil {
			return err
		}
		for _, blob := range g.ColumnBlobs {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(blob))); err != nil {
				return err
			}
			if _, err := w.Write(blob); err != nil {
				return err
			}
		}
	}
	return nil
}

func readGroups(r io.Reader) ([]EntityGroup, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	out := make([]EntityGroup, count)
	for i := range out {
		var numIdx uint32
		if err := binary.Read(r, binary.LittleEndian, &numIdx); err != nil {
			return nil, err
		}
		idxs := make([]int, numIdx)
		for j := range idxs {
			var v uint32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			idxs[j] = int(v)
		}
		var numRows uint32
		if err := binary.Read(r, binary.LittleEndian, &numRows); err != nil {
			return nil, err
		}
		var numBlobs uint32
		if err := binary.Read(r, binary.LittleEndian, &numBlobs); err != nil {
			return nil, err
		}
		blobs := make([][]byte, numBlobs)
		for j := range blobs {
			var blen uint32
			if err := binary.Read(r, binary.LittleEndian, &blen); err != nil {
				return nil, err
			}
			buf := make([]byte, blen)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
			blobs[j] = buf
		}
		out[i] = EntityGroup{ComponentIndices: idxs, NumRows: int(numRows), ColumnBlobs: blobs}
	}
	return out, nil
}

func writeStrings(w io.Writer, strs []string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(strs))); err != nil {
		return err
	}
	for _, s := range strs {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(r io.Reader) ([]string, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i := range out {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
