package blockfile

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-secded/fragment"
	"github.com/arloliu/go-secded/hamming"
)

func splitPayload(t *testing.T, n int) ([]byte, []*hamming.Packet) {
	t.Helper()
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	packets, err := fragment.Split(payload)
	require.NoError(t, err)

	return payload, packets
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	payload, packets := splitPayload(t, 2*hamming.MaxPayloadSize+123)

	m, err := Write(dir, "sample.bin", packets)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, "sample.bin", m.Name)
	assert.Equal(t, int64(len(payload)), m.Size)
	assert.Equal(t, 3, m.Fragments)
	assert.Equal(t, hamming.BlockSize, m.BlockSize)

	for i := range 3 {
		info, err := os.Stat(BlockPath(dir, "sample.bin", i))
		require.NoError(t, err)
		assert.Equal(t, int64(hamming.BlockSize), info.Size())
	}
	assert.FileExists(t, filepath.Join(dir, "sample.bin_0.pak"))
	assert.FileExists(t, filepath.Join(dir, "sample.bin.manifest"))

	got, err := ReadManifest(ManifestPath(dir, "sample.bin"))
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Size, got.Size)
	assert.Equal(t, m.Fragments, got.Fragments)
	assert.Equal(t, m.BlockSize, got.BlockSize)
	assert.True(t, m.Created.Equal(got.Created), "created %v != %v", m.Created, got.Created)

	blocks, err := ReadBlocks(dir, got)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	for i, b := range blocks {
		assert.Equal(t, packets[i].Bytes(), b)
	}

	joined, err := fragment.JoinBlocks(blocks)
	require.NoError(t, err)
	assert.Equal(t, payload, joined)
}

func TestRead_CorruptedBlockIsRepaired(t *testing.T) {
	dir := t.TempDir()
	payload, packets := splitPayload(t, 1000)

	m, err := Write(dir, "one", packets)
	require.NoError(t, err)

	path := BlockPath(dir, "one", 0)
	b, err := ReadBlock(path)
	require.NoError(t, err)
	b[500] ^= 0x80
	require.NoError(t, WriteBlock(path, b))

	blocks, err := ReadBlocks(dir, m)
	require.NoError(t, err)
	joined, err := fragment.JoinBlocks(blocks)
	require.NoError(t, err)
	assert.Equal(t, payload, joined)
}

func TestReadBlocks_Errors(t *testing.T) {
	dir := t.TempDir()
	_, packets := splitPayload(t, 2*hamming.MaxPayloadSize)

	m, err := Write(dir, "data", packets)
	require.NoError(t, err)

	// truncated block is read as-is and rejected by the parser
	path := BlockPath(dir, "data", 1)
	require.NoError(t, os.WriteFile(path, make([]byte, 100), fileMode))
	blocks, err := ReadBlocks(dir, m)
	require.NoError(t, err)
	_, err = fragment.JoinBlocks(blocks)
	require.ErrorIs(t, err, hamming.ErrInvalidBlockSize)

	require.NoError(t, os.Remove(path))
	_, err = ReadBlocks(dir, m)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWrite_Invalid(t *testing.T) {
	dir := t.TempDir()
	_, packets := splitPayload(t, 10)

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := Write(dir, name, packets)
		require.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	_, err := Write(dir, "empty", nil)
	require.ErrorIs(t, err, ErrManifest)

	_, err = Write(filepath.Join(dir, "missing"), "x", packets)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWriteBlock_Size(t *testing.T) {
	err := WriteBlock(filepath.Join(t.TempDir(), "b.pak"), make([]byte, hamming.BlockSize-1))
	require.ErrorIs(t, err, hamming.ErrInvalidBlockSize)
}

func TestManifest_Validate(t *testing.T) {
	valid := func() *Manifest {
		return &Manifest{ID: uuid.New(), Name: "x", Size: 10, Fragments: 1, BlockSize: hamming.BlockSize}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		modify func(m *Manifest)
	}{
		{"bad name", func(m *Manifest) { m.Name = "a/b" }},
		{"bad block size", func(m *Manifest) { m.BlockSize = 512 }},
		{"no fragments", func(m *Manifest) { m.Fragments = 0 }},
		{"too many fragments", func(m *Manifest) { m.Fragments = fragment.MaxFragments + 1 }},
		{"negative size", func(m *Manifest) { m.Size = -1 }},
		{"size over capacity", func(m *Manifest) { m.Size = int64(hamming.MaxPayloadSize) + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.modify(m)
			require.ErrorIs(t, m.Validate(), ErrManifest)
		})
	}
}

func TestDecodeManifest_Invalid(t *testing.T) {
	_, err := DecodeManifest([]byte{0xff, 0x00})
	require.ErrorIs(t, err, ErrManifest)

	m := &Manifest{Name: "x", Fragments: 1, BlockSize: 1024}
	data, err := m.Encode()
	require.NoError(t, err)
	_, err = DecodeManifest(data)
	require.ErrorIs(t, err, ErrManifest)

	path := filepath.Join(t.TempDir(), "nothing.manifest")
	_, err = ReadManifest(path)
	require.ErrorIs(t, err, fs.ErrNotExist)
}
