package flat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var flatMagic = [4]byte{'F', 'L', 'A', 'T'}

// headerSize is magic + dim + count.
const headerSize = 12

// Encode writes the index in the flat binary format.
func Encode(w io.Writer, x *Index) error {
	crc := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(w, crc))

	le := binary.LittleEndian
	write := func(v any) error { return binary.Write(bw, le, v) }

	if _, err := bw.Write(flatMagic[:]); err != nil {
		return fmt.Errorf("flat: save magic: %w", err)
	}
	if err := write(uint32(x.dim)); err != nil {
		return fmt.Errorf("flat: save dim: %w", err)
	}
	if err := write(uint32(x.Size())); err != nil {
		return fmt.Errorf("flat: save count: %w", err)
	}

	var buf [4]byte
	for _, v := range x.data {
		le.PutUint32(buf[:], math.Float32bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("flat: save vectors: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flat: save vectors: %w", err)
	}

	le.PutUint32(buf[:], crc.Sum32())
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("flat: save checksum: %w", err)
	}
	return nil
}

// Decode reads an index in the flat binary format.
// Any structural problem is reported as domain.ErrIndexCorrupt.
func Decode(r io.Reader) (*Index, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("flat: read: %w", err)
	}
	if len(raw) < headerSize+4 {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", domain.ErrIndexCorrupt, len(raw))
	}

	le := binary.LittleEndian
	body, trailer := raw[:len(raw)-4], raw[len(raw)-4:]
	if got, want := crc32.ChecksumIEEE(body), le.Uint32(trailer); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch", domain.ErrIndexCorrupt)
	}

	var magic [4]byte
	copy(magic[:], body[:4])
	if magic != flatMagic {
		return nil, fmt.Errorf("%w: invalid magic %q", domain.ErrIndexCorrupt, magic[:])
	}

	dim := int(le.Uint32(body[4:8]))
	count := int(le.Uint32(body[8:12]))
	if dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dimension %d", domain.ErrIndexCorrupt, dim)
	}
	payload := body[headerSize:]
	if uint64(len(payload)) != uint64(count)*uint64(dim)*4 {
		return nil, fmt.Errorf("%w: expected %d vectors of %d dims, found %d bytes",
			domain.ErrIndexCorrupt, count, dim, len(payload))
	}

	data := make([]float32, count*dim)
	for i := range data {
		data[i] = math.Float32frombits(le.Uint32(payload[i*4:]))
	}
	return &Index{dim: dim, data: data}, nil
}
