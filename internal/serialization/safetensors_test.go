package serialization

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/internal/backend/cpu"
	"github.com/born-ml/perceiver/internal/tensor"
)

func sampleTensors(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	b := cpu.New()
	return map[string]*tensor.RawTensor{
		"latents":        tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b).Raw(),
		"head.bias":      tensor.MustFromSlice([]float32{-0.5}, tensor.Shape{1}, b).Raw(),
		"tokens":         tensor.MustFromSlice([]int32{7, 8}, tensor.Shape{2}, b).Raw(),
		"mask.cross_att": tensor.MustFromSlice([]bool{true, false, true}, tensor.Shape{3}, b).Raw(),
	}
}

func encode(t *testing.T, tensors map[string]*tensor.RawTensor, meta map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteSafeTensors(&buf, tensors, meta))
	return buf.Bytes()
}

func TestSafeTensors_RoundTrip(t *testing.T) {
	in := sampleTensors(t)
	raw := encode(t, in, map[string]string{"format": "perceiver"})

	headerLen := binary.LittleEndian.Uint64(raw[:8])
	assert.Zero(t, headerLen%8, "header is padded to 8 bytes")

	f, err := ReadSafeTensors(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"head.bias", "latents", "mask.cross_att", "tokens"}, f.Names())
	assert.Equal(t, "perceiver", f.Metadata["format"])
	assert.Len(t, f.Metadata[ChecksumKey], 64)

	for name, want := range in {
		got := f.Tensors[name]
		require.NotNil(t, got, name)
		assert.Equal(t, want.Shape(), got.Shape(), name)
		assert.Equal(t, want.DType(), got.DType(), name)
		assert.Equal(t, want.Data(), got.Data(), name)
	}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, f.Tensors["latents"].AsFloat32())
	assert.Equal(t, []bool{true, false, true}, f.Tensors["mask.cross_att"].AsBool())
}

func TestSafeTensors_DeterministicOutput(t *testing.T) {
	in := sampleTensors(t)
	assert.Equal(t, encode(t, in, nil), encode(t, in, nil))
}

func TestSafeTensors_ChecksumMismatch(t *testing.T) {
	raw := encode(t, sampleTensors(t), nil)
	raw[len(raw)-1] ^= 0xff

	_, err := ReadSafeTensors(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

// build assembles a file from a literal header so malformed layouts can be
// exercised without going through the writer.
func build(header string, data []byte) []byte {
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(len(header)))
	out := append(prefix[:], header...)
	return append(out, data...)
}

func TestSafeTensors_ReadErrors(t *testing.T) {
	data := make([]byte, 16)
	tests := []struct {
		name   string
		file   []byte
		target error
	}{
		{"truncated", []byte{1, 2, 3}, ErrInvalidHeader},
		{"bad json", build("{not json", data), ErrInvalidHeader},
		{
			"overlap",
			build(`{"a":{"dtype":"F32","shape":[2],"data_offsets":[0,8]},"b":{"dtype":"F32","shape":[2],"data_offsets":[4,12]}}`, data),
			ErrOffsetOverlap,
		},
		{
			"out of bounds",
			build(`{"a":{"dtype":"F32","shape":[8],"data_offsets":[0,32]}}`, data),
			ErrOutOfBounds,
		},
		{
			"negative",
			build(`{"a":{"dtype":"F32","shape":[1],"data_offsets":[8,4]}}`, data),
			ErrNegativeOffset,
		},
		{
			"size mismatch",
			build(`{"a":{"dtype":"F32","shape":[3],"data_offsets":[0,8]}}`, data),
			ErrSizeMismatch,
		},
		{
			"dtype",
			build(`{"a":{"dtype":"F16","shape":[4],"data_offsets":[0,8]}}`, data),
			ErrUnsupportedDType,
		},
		{
			"path name",
			build(`{"../a":{"dtype":"F32","shape":[1],"data_offsets":[0,4]}}`, data),
			ErrInvalidTensorName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSafeTensors(bytes.NewReader(tt.file))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestSafeTensors_HeaderTooLarge(t *testing.T) {
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], MaxHeaderSize+1)

	_, err := ReadSafeTensors(bytes.NewReader(prefix[:]))
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestSafeTensors_WriteRejectsBadNames(t *testing.T) {
	in := sampleTensors(t)
	in["a/b"] = in["latents"]

	err := WriteSafeTensors(&bytes.Buffer{}, in, nil)
	assert.ErrorIs(t, err, ErrInvalidTensorName)
}

func TestValidateTensorName(t *testing.T) {
	assert.NoError(t, ValidateTensorName("layers.0.cross_attn.norm.gamma"))

	for _, name := range []string{"", "a..b", `a\b`, "a\x00b", metadataKey, string(make([]byte, MaxTensorNameLen+1))} {
		assert.Error(t, ValidateTensorName(name), "%q", name)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := ValidateTensorOffsets([]TensorMeta{
		{Name: "a", Offset: 0, Size: 8},
		{Name: "b", Offset: 4, Size: 8},
	}, 16)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "offset_overlap", verr.Type)
	assert.Contains(t, err.Error(), `tensors "a" and "b"`)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.safetensors")
	in := sampleTensors(t)

	require.NoError(t, SaveFile(path, in, map[string]string{"k": "v"}))
	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v", f.Metadata["k"])
	assert.Len(t, f.Tensors, len(in))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is cleaned up")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.safetensors"))
	assert.Error(t, err)
}
