package fontfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
)

var (
	ErrInvalidFont       = errors.New("invalid font")
	ErrUnsupportedFlavor = errors.New("unsupported flavor")
)

const (
	VersionTrueType uint32 = 0x00010000
	VersionCFF      uint32 = 0x4F54544F // "OTTO"
	VersionApple    uint32 = 0x74727565 // "true"

	sfntHeaderSize   = 12
	sfntDirEntrySize = 16
)

type Flavor int

const (
	FlavorSFNT Flavor = iota
	FlavorWOFF
)

func (f Flavor) String() string {
	switch f {
	case FlavorSFNT:
		return "sfnt"
	case FlavorWOFF:
		return "woff"
	default:
		return fmt.Sprintf("flavor(%d)", int(f))
	}
}

type Table struct {
	Tag      string
	Checksum uint32
	Data     []byte
}

// Font is a parsed SFNT container. Tables are kept in the order their data
// appears in the source file.
type Font struct {
	Version uint32
	Flavor  Flavor
	Tables  []Table
}

type SaveOptions struct {
	// ReorderTables writes table data in the recommended order instead of
	// the source order.
	ReorderTables bool
}

// Read consumes r and parses it like Parse.
func Read(r io.Reader) (*Font, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read font data: %w", err)
	}
	return Parse(data)
}

// Parse decodes the SFNT header and table directory of data. The returned
// tables share memory with data.
func Parse(data []byte) (*Font, error) {
	if len(data) < sfntHeaderSize {
		return nil, fmt.Errorf("%w: file is %d bytes long", ErrInvalidFont, len(data))
	}

	version := binary.BigEndian.Uint32(data)
	switch version {
	case VersionTrueType, VersionCFF, VersionApple:
	default:
		return nil, fmt.Errorf("%w: unknown sfnt version 0x%08x", ErrInvalidFont, version)
	}

	numTables := int(binary.BigEndian.Uint16(data[4:]))
	if numTables == 0 {
		return nil, fmt.Errorf("%w: no tables", ErrInvalidFont)
	}
	if sfntHeaderSize+sfntDirEntrySize*numTables > len(data) {
		return nil, fmt.Errorf("%w: table directory is truncated", ErrInvalidFont)
	}

	type record struct {
		table  Table
		offset uint32
	}

	records := make([]record, 0, numTables)
	seen := make(map[string]bool, numTables)
	for i := 0; i < numTables; i++ {
		p := data[sfntHeaderSize+sfntDirEntrySize*i:]
		tag := string(p[0:4])
		checksum := binary.BigEndian.Uint32(p[4:])
		offset := binary.BigEndian.Uint32(p[8:])
		length := binary.BigEndian.Uint32(p[12:])

		if uint64(offset)+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: table %q is out of bounds", ErrInvalidFont, tag)
		}
		if seen[tag] {
			return nil, fmt.Errorf("%w: duplicate table %q", ErrInvalidFont, tag)
		}
		seen[tag] = true

		records = append(records, record{
			table:  Table{Tag: tag, Checksum: checksum, Data: data[offset : offset+length]},
			offset: offset,
		})
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].offset < records[j].offset })

	font := &Font{Version: version, Flavor: FlavorSFNT, Tables: make([]Table, len(records))}
	for i, rec := range records {
		font.Tables[i] = rec.table
	}
	return font, nil
}

func (f *Font) Table(tag string) (Table, bool) {
	for _, t := range f.Tables {
		if t.Tag == tag {
			return t, true
		}
	}
	return Table{}, false
}

func (f *Font) Save(w io.Writer, opts SaveOptions) error {
	if len(f.Tables) == 0 {
		return fmt.Errorf("%w: no tables", ErrInvalidFont)
	}
	seen := make(map[string]bool, len(f.Tables))
	for _, t := range f.Tables {
		if len(t.Tag) != 4 {
			return fmt.Errorf("%w: table tag %q is not four bytes", ErrInvalidFont, t.Tag)
		}
		if seen[t.Tag] {
			return fmt.Errorf("%w: duplicate table %q", ErrInvalidFont, t.Tag)
		}
		seen[t.Tag] = true
	}

	tables := f.Tables
	if opts.ReorderTables {
		tables = recommendedOrder(f.Version, f.Tables)
	}

	switch f.Flavor {
	case FlavorSFNT:
		return writeSFNT(w, f.Version, tables)
	case FlavorWOFF:
		return writeWOFF(w, f, tables)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFlavor, f.Flavor)
	}
}

// sfntSize is the size of the font once decoded back into a plain SFNT.
func (f *Font) sfntSize() uint32 {
	size := sfntHeaderSize + sfntDirEntrySize*len(f.Tables)
	for _, t := range f.Tables {
		size += pad4(len(t.Data))
	}
	return uint32(size)
}

// revision splits head.fontRevision into the major and minor version
// numbers used by the web font headers.
func (f *Font) revision() (uint16, uint16) {
	head, ok := f.Table("head")
	if !ok || len(head.Data) < 8 {
		return 0, 0
	}
	return binary.BigEndian.Uint16(head.Data[4:]), binary.BigEndian.Uint16(head.Data[6:])
}

var (
	truetypeOrder = []string{"head", "hhea", "maxp", "OS/2", "hmtx", "LTSH", "VDMX", "hdmx", "cmap", "fpgm", "prep", "cvt ", "loca", "glyf", "kern", "name", "post", "gasp", "PCLT"}
	cffOrder      = []string{"head", "hhea", "maxp", "OS/2", "name", "cmap", "post", "CFF "}
)

func recommendedOrder(version uint32, tables []Table) []Table {
	order := truetypeOrder
	if version == VersionCFF {
		order = cffOrder
	}

	rank := func(tag string) int {
		if tag == "DSIG" {
			return len(order) + 1
		}
		if i := slices.Index(order, tag); i >= 0 {
			return i
		}
		return len(order)
	}

	sorted := slices.Clone(tables)
	slices.SortStableFunc(sorted, func(a, b Table) int {
		if ra, rb := rank(a.Tag), rank(b.Tag); ra != rb {
			return ra - rb
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return sorted
}

func sortedByTag(tables []Table) []Table {
	sorted := slices.Clone(tables)
	slices.SortFunc(sorted, func(a, b Table) int { return strings.Compare(a.Tag, b.Tag) })
	return sorted
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
