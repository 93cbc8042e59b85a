package fontfile

import (
	"bufio"
	"encoding/binary"
	"io"
	"math/bits"
)

// Checksum computes the OpenType table checksum: the sum of the data as
// big-endian uint32 words, zero padded to a multiple of four bytes.
func Checksum(data []byte) uint32 {
	var sum uint32
	for len(data) >= 4 {
		sum += binary.BigEndian.Uint32(data)
		data = data[4:]
	}
	if len(data) > 0 {
		var tail [4]byte
		copy(tail[:], data)
		sum += binary.BigEndian.Uint32(tail[:])
	}
	return sum
}

// tableChecksum returns the recorded checksum of t, computing it when the
// table was built in memory without one. The head table is summed with its
// checkSumAdjustment field zeroed.
func tableChecksum(t Table) uint32 {
	if t.Checksum != 0 {
		return t.Checksum
	}
	if t.Tag == "head" && len(t.Data) >= 12 {
		data := make([]byte, len(t.Data))
		copy(data, t.Data)
		clear(data[8:12])
		return Checksum(data)
	}
	return Checksum(t.Data)
}

func writeSFNT(w io.Writer, version uint32, tables []Table) error {
	numTables := len(tables)
	entrySelector := bits.Len(uint(numTables)) - 1
	searchRange := (1 << entrySelector) * sfntDirEntrySize
	rangeShift := numTables*sfntDirEntrySize - searchRange

	offsets := make(map[string]uint32, numTables)
	offset := uint32(sfntHeaderSize + sfntDirEntrySize*numTables)
	for _, t := range tables {
		offsets[t.Tag] = offset
		offset += uint32(pad4(len(t.Data)))
	}

	bw := bufio.NewWriter(w)

	header := make([]byte, sfntHeaderSize, sfntHeaderSize+sfntDirEntrySize*numTables)
	binary.BigEndian.PutUint32(header[0:], version)
	binary.BigEndian.PutUint16(header[4:], uint16(numTables))
	binary.BigEndian.PutUint16(header[6:], uint16(searchRange))
	binary.BigEndian.PutUint16(header[8:], uint16(entrySelector))
	binary.BigEndian.PutUint16(header[10:], uint16(rangeShift))

	for _, t := range sortedByTag(tables) {
		header = append(header, t.Tag...)
		header = binary.BigEndian.AppendUint32(header, tableChecksum(t))
		header = binary.BigEndian.AppendUint32(header, offsets[t.Tag])
		header = binary.BigEndian.AppendUint32(header, uint32(len(t.Data)))
	}
	if _, err := bw.Write(header); err != nil {
		return err
	}

	var padding [3]byte
	for _, t := range tables {
		if _, err := bw.Write(t.Data); err != nil {
			return err
		}
		if _, err := bw.Write(padding[:pad4(len(t.Data))-len(t.Data)]); err != nil {
			return err
		}
	}

	return bw.Flush()
}
