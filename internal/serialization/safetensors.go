package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/born-ml/perceiver/internal/tensor"
)

const metadataKey = "__metadata__"

// SafeTensors dtype names.
const (
	DTypeF32  = "F32"
	DTypeI32  = "I32"
	DTypeBool = "BOOL"
)

type headerEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// File is a decoded SafeTensors checkpoint.
type File struct {
	Tensors  map[string]*tensor.RawTensor
	Metadata map[string]string
}

// Names returns the tensor names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Tensors))
	for name := range f.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func dtypeName(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return DTypeF32, nil
	case tensor.Int32:
		return DTypeI32, nil
	case tensor.Bool:
		return DTypeBool, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

func parseDType(name string) (tensor.DataType, bool) {
	switch name {
	case DTypeF32:
		return tensor.Float32, true
	case DTypeI32:
		return tensor.Int32, true
	case DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}

// WriteSafeTensors encodes tensors in name order. The checksum of the data
// section is added to metadata under ChecksumKey.
func WriteSafeTensors(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	names := make([]string, 0, len(tensors))
	var total int
	for name, raw := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
		total += len(raw.Data())
	}
	sort.Strings(names)

	header := make(map[string]any, len(tensors)+1)
	data := make([]byte, 0, total)
	for _, name := range names {
		raw := tensors[name]
		dt, err := dtypeName(raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}
		begin := int64(len(data))
		data = append(data, raw.Data()...)
		header[name] = headerEntry{
			DType:       dt,
			Shape:       append([]int{}, raw.Shape()...),
			DataOffsets: [2]int64{begin, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	sum := ComputeChecksum(data)
	meta[ChecksumKey] = hex.EncodeToString(sum[:])
	header[metadataKey] = meta

	hdr, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	for len(hdr)%8 != 0 {
		hdr = append(hdr, ' ')
	}

	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(len(hdr)))
	for _, chunk := range [][]byte{prefix[:], hdr, data} {
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("failed to write checkpoint: %w", err)
		}
	}
	return nil
}

// ReadSafeTensors decodes and validates a checkpoint. Tensors land on the CPU
// device.
func ReadSafeTensors(r io.Reader) (*File, error) {
	var prefix [8]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header size: %w", ErrInvalidHeader, err)
	}
	size := binary.LittleEndian.Uint64(prefix[:])
	if size > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, size)
	}

	hdr := make([]byte, size)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrInvalidHeader, err)
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(hdr, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	f := &File{
		Tensors:  make(map[string]*tensor.RawTensor, len(entries)),
		Metadata: make(map[string]string),
	}
	parsed := make(map[string]headerEntry, len(entries))
	metas := make([]TensorMeta, 0, len(entries))
	for name, msg := range entries {
		if name == metadataKey {
			if err := json.Unmarshal(msg, &f.Metadata); err != nil {
				return nil, fmt.Errorf("%w: metadata: %w", ErrInvalidHeader, err)
			}
			continue
		}
		if err := ValidateTensorName(name); err != nil {
			return nil, err
		}
		var e headerEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("%w: tensor %q: %w", ErrInvalidHeader, name, err)
		}
		parsed[name] = e
		metas = append(metas, TensorMeta{
			Name:   name,
			Offset: e.DataOffsets[0],
			Size:   e.DataOffsets[1] - e.DataOffsets[0],
		})
	}

	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, err
	}
	if stored, ok := f.Metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, stored); err != nil {
			return nil, err
		}
	}

	for name, e := range parsed {
		raw, err := decodeTensor(name, e, data)
		if err != nil {
			return nil, err
		}
		f.Tensors[name] = raw
	}
	return f, nil
}

func decodeTensor(name string, e headerEntry, data []byte) (*tensor.RawTensor, error) {
	dt, ok := parseDType(e.DType)
	if !ok {
		return nil, &ValidationError{Type: "unsupported_dtype", Tensor: name, Details: e.DType}
	}

	shape := tensor.Shape(e.Shape)
	if err := shape.Validate(); err != nil {
		return nil, &ValidationError{Type: "invalid_shape", Tensor: name, Details: err.Error()}
	}

	span := e.DataOffsets[1] - e.DataOffsets[0]
	want := int64(dt.Size())
	for _, dim := range shape {
		want *= int64(dim)
		if want > span {
			break
		}
	}
	if want != span {
		return nil, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  name,
			Details: fmt.Sprintf("shape %v of %s does not fill %d bytes", shape, dt, span),
		}
	}

	raw, err := tensor.NewRaw(shape, dt, tensor.CPU)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data[e.DataOffsets[0]:e.DataOffsets[1]])
	return raw, nil
}

// SaveFile writes a checkpoint to path. The file is replaced atomically.
func SaveFile(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	buf := bufio.NewWriter(tmp)
	if err := WriteSafeTensors(buf, tensors, metadata); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile reads a checkpoint from path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path) //nolint:gosec // G304: caller-chosen checkpoint path
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer fh.Close() //nolint:errcheck // read-only

	f, err := ReadSafeTensors(bufio.NewReader(fh))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
