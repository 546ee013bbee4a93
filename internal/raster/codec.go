package raster

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/DataDog/zstd"
)

// gridMagic identifies the on-disk grid format. The payload is a JSON header
// followed by a zstd-compressed block of little-endian float64 cell values,
// as written by the NDVI export pipeline.
var gridMagic = [4]byte{'N', 'D', 'V', '1'}

type gridHeader struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Extent Extent  `json:"extent"`
	Nodata float64 `json:"nodata"`
}

// WriteGrid serializes the grid to w.
func WriteGrid(w io.Writer, g *Grid) error {
	header, err := json.Marshal(gridHeader{
		Width:  g.width,
		Height: g.height,
		Extent: g.extent,
		Nodata: g.nodata,
	})
	if err != nil {
		return fmt.Errorf("encoding grid header: %w", err)
	}

	raw := make([]byte, 8*len(g.values))
	for i, v := range g.values {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	compressed, err := zstd.Compress(nil, raw)
	if err != nil {
		return fmt.Errorf("compressing grid values: %w", err)
	}

	if _, err := w.Write(gridMagic[:]); err != nil {
		return err
	}
	var lengths [8]byte
	binary.LittleEndian.PutUint32(lengths[0:], uint32(len(header)))
	binary.LittleEndian.PutUint32(lengths[4:], uint32(len(compressed)))
	if _, err := w.Write(lengths[:]); err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(compressed)
	return err
}

// ReadGrid deserializes a grid from r, validating dimensions against the
// decompressed payload.
func ReadGrid(r io.Reader) (*Grid, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("reading grid magic: %w", err)
	}
	if magic != gridMagic {
		return nil, fmt.Errorf("not a grid file (magic %q)", magic)
	}

	var lengths [8]byte
	if _, err := io.ReadFull(r, lengths[:]); err != nil {
		return nil, fmt.Errorf("reading grid lengths: %w", err)
	}
	headerLen := binary.LittleEndian.Uint32(lengths[0:])
	payloadLen := binary.LittleEndian.Uint32(lengths[4:])

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("reading grid header: %w", err)
	}
	var header gridHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("decoding grid header: %w", err)
	}

	compressed := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("reading grid payload: %w", err)
	}
	raw, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompressing grid payload: %w", err)
	}

	expected := header.Width * header.Height * 8
	if len(raw) != expected {
		return nil, fmt.Errorf("grid payload is %d bytes, header implies %d", len(raw), expected)
	}

	values := make([]float64, header.Width*header.Height)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return NewGrid(header.Width, header.Height, header.Extent, header.Nodata, values)
}

// LoadGridFile reads a grid from the given path.
func LoadGridFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening raster %s: %w", path, err)
	}
	defer f.Close()
	return ReadGrid(f)
}
