package embindex

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Persisted matrix layout: 4-byte magic, uint16 version, uint32 rows,
// uint32 dims, then rows*dims little-endian float32 values in row-major
// corpus order. Any decode failure is treated as cache-miss by the caller.
const (
	matrixMagic   = "PEMB"
	matrixVersion = 1
	headerLen     = 4 + 2 + 4 + 4
)

func encodeMatrix(rows [][]float32, dims int) ([]byte, error) {
	buf := make([]byte, headerLen+len(rows)*dims*4)
	copy(buf, matrixMagic)
	binary.LittleEndian.PutUint16(buf[4:], matrixVersion)
	binary.LittleEndian.PutUint32(buf[6:], uint32(len(rows)))
	binary.LittleEndian.PutUint32(buf[10:], uint32(dims))

	off := headerLen
	for i, row := range rows {
		if len(row) != dims {
			return nil, fmt.Errorf("row %d has %d dims, want %d", i, len(row), dims)
		}
		for _, f := range row {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf, nil
}

func decodeMatrix(data []byte) ([][]float32, int, error) {
	if len(data) < headerLen {
		return nil, 0, fmt.Errorf("matrix file too short: %d bytes", len(data))
	}
	if string(data[:4]) != matrixMagic {
		return nil, 0, fmt.Errorf("bad magic %q", data[:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != matrixVersion {
		return nil, 0, fmt.Errorf("unsupported matrix version %d", v)
	}
	rowCount := int(binary.LittleEndian.Uint32(data[6:]))
	dims := int(binary.LittleEndian.Uint32(data[10:]))

	want := headerLen + rowCount*dims*4
	if len(data) != want {
		return nil, 0, fmt.Errorf("matrix file has %d bytes, want %d for %dx%d", len(data), want, rowCount, dims)
	}

	rows := make([][]float32, rowCount)
	off := headerLen
	for i := range rows {
		row := make([]float32, dims)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		rows[i] = row
	}
	return rows, dims, nil
}
