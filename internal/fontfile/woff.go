package fontfile

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	woffSignature    uint32 = 0x774F4646 // "wOFF"
	woffHeaderSize          = 44
	woffDirEntrySize        = 20
)

type woffEntry struct {
	tag        string
	offset     uint32
	compLength uint32
	origLength uint32
	checksum   uint32
	data       []byte
}

// writeWOFF writes a WOFF 1.0 file. Table data is laid out in the order of
// tables while the directory is sorted by tag as the format requires.
func writeWOFF(w io.Writer, f *Font, tables []Table) error {
	entries := make([]woffEntry, len(tables))
	offset := uint32(woffHeaderSize + woffDirEntrySize*len(tables))
	for i, t := range tables {
		data := t.Data
		compressed, err := zlibCompress(t.Data)
		if err != nil {
			return fmt.Errorf("compress table %q: %w", t.Tag, err)
		}
		if len(compressed) < len(t.Data) {
			data = compressed
		}

		entries[i] = woffEntry{
			tag:        t.Tag,
			offset:     offset,
			compLength: uint32(len(data)),
			origLength: uint32(len(t.Data)),
			checksum:   tableChecksum(t),
			data:       data,
		}
		offset += uint32(pad4(len(data)))
	}

	major, minor := f.revision()

	header := make([]byte, woffHeaderSize, woffHeaderSize+woffDirEntrySize*len(entries))
	binary.BigEndian.PutUint32(header[0:], woffSignature)
	binary.BigEndian.PutUint32(header[4:], f.Version)
	binary.BigEndian.PutUint32(header[8:], offset)
	binary.BigEndian.PutUint16(header[12:], uint16(len(entries)))
	binary.BigEndian.PutUint32(header[16:], f.sfntSize())
	binary.BigEndian.PutUint16(header[20:], major)
	binary.BigEndian.PutUint16(header[22:], minor)
	// metadata and private data blocks stay zero

	directory := slices.Clone(entries)
	slices.SortFunc(directory, func(a, b woffEntry) int { return strings.Compare(a.tag, b.tag) })
	for _, e := range directory {
		header = append(header, e.tag...)
		header = binary.BigEndian.AppendUint32(header, e.offset)
		header = binary.BigEndian.AppendUint32(header, e.compLength)
		header = binary.BigEndian.AppendUint32(header, e.origLength)
		header = binary.BigEndian.AppendUint32(header, e.checksum)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header); err != nil {
		return err
	}

	var padding [3]byte
	for _, e := range entries {
		if _, err := bw.Write(e.data); err != nil {
			return err
		}
		if _, err := bw.Write(padding[:pad4(len(e.data))-len(e.data)]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func zlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
