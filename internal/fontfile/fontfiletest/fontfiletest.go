// Package fontfiletest builds small synthetic OpenType fonts for tests.
package fontfiletest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/SayaAndy/saya-today-font-converter/internal/fontfile"
)

// Sample returns a CFF-flavored OpenType font whose name table carries
// family. Table data is laid out out of tag order.
func Sample(family string) []byte {
	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[0:], 0x00010000)
	binary.BigEndian.PutUint32(head[4:], 0x00010000)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5)

	font := &fontfile.Font{
		Version: fontfile.VersionCFF,
		Flavor:  fontfile.FlavorSFNT,
		Tables: []fontfile.Table{
			{Tag: "head", Data: head},
			{Tag: "hhea", Data: bytes.Repeat([]byte{0x00, 0x10}, 18)},
			{Tag: "CFF ", Data: bytes.Repeat([]byte(family+" outlines "), 32)},
			{Tag: "cmap", Data: []byte{0, 0, 0, 1, 0, 3, 0, 1, 0, 0, 0, 12}},
			{Tag: "name", Data: []byte(family)},
		},
	}

	var buf bytes.Buffer
	if err := font.Save(&buf, fontfile.SaveOptions{}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteSample writes Sample(family) to dir/name and returns the full path.
func WriteSample(t testing.TB, dir, name, family string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create font directory: %v", err)
	}
	if err := os.WriteFile(path, Sample(family), 0o644); err != nil {
		t.Fatalf("write sample font: %v", err)
	}
	return path
}
