// package nifti reads just enough of the NIfTI-1 and NIfTI-2 header
// formats to report the axis lengths of a volume without decoding voxel
// data. Both byte orders are handled and gzip-compressed files are
// detected by magic and decompressed on the fly.
package nifti

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fmriprep-tools/motiontsv/internal/shared"
)

const (
	headerSize1 = 348
	headerSize2 = 540
)

// Header carries the decoded fields this package consults.
type Header struct {
	Version int     // 1 or 2
	Dims    []int64 // axis lengths dim[1..dim[0]] as declared in the header
}

// Shape returns the axis lengths of h. CIFTI-style files declare their
// real axes after four singleton dimensions; those singletons are dropped
// so the first element is the sample count.
func (h *Header) Shape() []int64 {
	d := h.Dims
	if len(d) >= 5 && d[0] == 1 && d[1] == 1 && d[2] == 1 && d[3] == 1 {
		return d[4:]
	}
	return d
}

// Shape reads the header of the file at path and returns its shape.
func Shape(path string) ([]int64, error) {
	h, err := ReadHeaderFile(path)
	if err != nil {
		return nil, err
	}
	return h.Shape(), nil
}

// ReadHeaderFile opens path, transparently decompresses gzip content and
// decodes the header.
func ReadHeaderFile(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: opening %s: %v", shared.ErrProcessing, path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", shared.ErrProcessing, path, err)
	}

	var r io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: decompressing %s: %v", shared.ErrProcessing, path, err)
		}
		defer gz.Close()
		r = gz
	}

	h, err := ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrProcessing, path, err)
	}
	return h, nil
}

// ReadHeader decodes a NIfTI-1 or NIfTI-2 header from r. The byte order
// is inferred from the leading header-size field, which decodes to a
// known constant only under the order the file was written with.
func ReadHeader(r io.Reader) (*Header, error) {
	var first [4]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, fmt.Errorf("reading header size: %w", err)
	}

	var order binary.ByteOrder = binary.LittleEndian
	size := order.Uint32(first[:])
	if size != headerSize1 && size != headerSize2 {
		order = binary.BigEndian
		size = order.Uint32(first[:])
	}

	switch size {
	case headerSize1:
		return readHeader1(r, order)
	case headerSize2:
		return readHeader2(r, order)
	default:
		return nil, errors.New("unrecognized header size")
	}
}

// readHeader1 decodes the remainder of a NIfTI-1 header. In the full
// header dim lives at offset 40 as eight int16 values and the magic at
// offset 344; buf starts at offset 4.
func readHeader1(r io.Reader, order binary.ByteOrder) (*Header, error) {
	buf := make([]byte, headerSize1-4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading NIfTI-1 header: %w", err)
	}

	if m := string(buf[340:343]); m != "n+1" && m != "ni1" {
		return nil, fmt.Errorf("bad NIfTI-1 magic %q", m)
	}

	var dim [8]int64
	for i := range dim {
		dim[i] = int64(int16(order.Uint16(buf[36+2*i:])))
	}
	return headerFromDims(1, dim)
}

// readHeader2 decodes the remainder of a NIfTI-2 header. In the full
// header the magic lives at offset 4 and dim at offset 16 as eight int64
// values; buf starts at offset 4.
func readHeader2(r io.Reader, order binary.ByteOrder) (*Header, error) {
	buf := make([]byte, headerSize2-4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading NIfTI-2 header: %w", err)
	}

	if m := string(buf[0:3]); m != "n+2" && m != "ni2" {
		return nil, fmt.Errorf("bad NIfTI-2 magic %q", m)
	}

	var dim [8]int64
	for i := range dim {
		dim[i] = int64(order.Uint64(buf[12+8*i:]))
	}
	return headerFromDims(2, dim)
}

func headerFromDims(version int, dim [8]int64) (*Header, error) {
	ndim := int(dim[0])
	if ndim < 1 || ndim > 7 {
		return nil, fmt.Errorf("implausible dimension count %d", ndim)
	}
	dims := make([]int64, ndim)
	copy(dims, dim[1:ndim+1])
	return &Header{Version: version, Dims: dims}, nil
}
