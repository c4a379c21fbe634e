// Package blockfile stores encoded Hamming blocks on disk.
//
// A payload named "name" that was split into N fragments is stored in dir as
//
//	name_0.pak ... name_<N-1>.pak   raw blocks, hamming.BlockSize bytes each
//	name.manifest                    CBOR-encoded Manifest
//
// The block files hold the encoded blocks exactly as produced by the codec, so bit
// errors introduced on disk are repaired when the blocks are decoded.
package blockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/arloliu/go-secded/fragment"
	"github.com/arloliu/go-secded/hamming"
	"github.com/arloliu/go-secded/logger"
)

const (
	blockExt    = ".pak"
	manifestExt = ".manifest"

	fileMode = 0o644
)

var (
	// ErrManifest indicates a manifest that cannot be decoded or describes an invalid set of blocks.
	ErrManifest = errors.New("blockfile: invalid manifest")

	// ErrInvalidName indicates an empty name or a name containing a path separator.
	ErrInvalidName = errors.New("blockfile: invalid name")
)

// Manifest describes a stored fragment sequence.
type Manifest struct {
	// ID identifies the transfer.
	ID uuid.UUID `cbor:"1,keyasint"`
	// Name is the file name prefix shared by the block files.
	Name string `cbor:"2,keyasint"`
	// Size is the payload size in bytes, the sum of the fragment payload sizes.
	Size int64 `cbor:"3,keyasint"`
	// Fragments is the number of block files.
	Fragments int `cbor:"4,keyasint"`
	// BlockSize is the size of each block file in bytes.
	BlockSize int `cbor:"5,keyasint"`
	// Created is the time the blocks were written.
	Created time.Time `cbor:"6,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Validate checks that m describes a readable set of blocks.
func (m *Manifest) Validate() error {
	if err := checkName(m.Name); err != nil {
		return fmt.Errorf("%w: %w", ErrManifest, err)
	}

	if m.BlockSize != hamming.BlockSize {
		return fmt.Errorf("%w: block size %d, expected %d", ErrManifest, m.BlockSize, hamming.BlockSize)
	}

	if m.Fragments < 1 || m.Fragments > fragment.MaxFragments {
		return fmt.Errorf("%w: fragment count %d", ErrManifest, m.Fragments)
	}

	if m.Size < 0 || m.Size > int64(m.Fragments)*int64(hamming.MaxPayloadSize) {
		return fmt.Errorf("%w: size %d for %d fragments", ErrManifest, m.Size, m.Fragments)
	}

	return nil
}

// Encode returns m as CBOR.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("blockfile: encode manifest: %w", err)
	}

	return data, nil
}

// DecodeManifest decodes and validates a CBOR manifest.
func DecodeManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := decMode.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// BlockPath returns the path of the block file with the given fragment index.
func BlockPath(dir, name string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, index, blockExt))
}

// ManifestPath returns the path of the manifest file for name.
func ManifestPath(dir, name string) string {
	return filepath.Join(dir, name+manifestExt)
}

// Write stores packets as block files in dir, followed by their manifest.
//
// Block files are named after each packet's index. The manifest is written last, so
// a present manifest implies all its blocks were written.
func Write(dir, name string, packets []*hamming.Packet) (*Manifest, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	if len(packets) == 0 {
		return nil, fmt.Errorf("%w: no packets", ErrManifest)
	}

	m := &Manifest{
		ID:        uuid.New(),
		Name:      name,
		Fragments: len(packets),
		BlockSize: hamming.BlockSize,
		Created:   time.Now().UTC(),
	}

	for _, p := range packets {
		if err := WriteBlock(BlockPath(dir, name, int(p.Index())), p.Bytes()); err != nil {
			return nil, err
		}
		m.Size += int64(p.Size())
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	data, err := m.Encode()
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(ManifestPath(dir, name), data, fileMode); err != nil {
		return nil, fmt.Errorf("blockfile: write manifest: %w", err)
	}

	logger.Debug("blockfile: blocks written", "dir", dir, "name", name, "fragments", m.Fragments, "id", m.ID)

	return m, nil
}

// ReadManifest reads and validates the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blockfile: read manifest: %w", err)
	}

	return DecodeManifest(data)
}

// ReadBlocks reads the block files described by m from dir, in index order.
//
// Block contents are not checked here; a truncated or oversized block surfaces as
// hamming.ErrInvalidBlockSize when it is parsed.
func ReadBlocks(dir string, m *Manifest) ([][]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	blocks := make([][]byte, m.Fragments)
	for i := range m.Fragments {
		b, err := ReadBlock(BlockPath(dir, m.Name, i))
		if err != nil {
			return nil, err
		}
		blocks[i] = b
	}

	return blocks, nil
}

// ReadBlock reads one block file.
func ReadBlock(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blockfile: read block: %w", err)
	}

	return b, nil
}

// WriteBlock writes one block file, replacing any existing file.
func WriteBlock(path string, block []byte) error {
	if len(block) != hamming.BlockSize {
		return fmt.Errorf("%w: got %d bytes", hamming.ErrInvalidBlockSize, len(block))
	}

	if err := os.WriteFile(path, block, fileMode); err != nil {
		return fmt.Errorf("blockfile: write block: %w", err)
	}

	return nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}
