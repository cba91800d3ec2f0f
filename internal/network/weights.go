package network

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hailam/chesszero/internal/policy"
)

// Weight file format constants.
const (
	MagicNumber = 0x4F52455A // "ZERO"
	Version     = 1
)

// FileHeader starts every weights file. The layer sizes must match the
// compiled architecture.
type FileHeader struct {
	Magic      uint32
	Version    uint32
	InputSize  uint32
	HiddenSize uint32
	PolicySize uint32
}

// LoadModel reads a model from a weights file.
func LoadModel(filename string) (*Model, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	m := NewModel()
	if err := m.LoadWeightsFromReader(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// LoadWeightsFromReader loads weights from r, little-endian:
//   - Header (FileHeader)
//   - HiddenWeights, HiddenBias
//   - PolicyWeights, PolicyBias
//   - ValueWeights, ValueBias
func (m *Model) LoadWeightsFromReader(r io.Reader) error {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != MagicNumber {
		return fmt.Errorf("invalid magic number: expected %x, got %x", MagicNumber, header.Magic)
	}
	if header.Version != Version {
		return fmt.Errorf("unsupported version: expected %d, got %d", Version, header.Version)
	}
	if header.InputSize != InputSize || header.HiddenSize != HiddenSize || header.PolicySize != policy.ActionSpace {
		return fmt.Errorf("layer size mismatch: got %d/%d/%d, want %d/%d/%d",
			header.InputSize, header.HiddenSize, header.PolicySize, InputSize, HiddenSize, policy.ActionSpace)
	}

	for _, part := range m.parts() {
		if err := binary.Read(r, binary.LittleEndian, part.data); err != nil {
			return fmt.Errorf("failed to read %s: %w", part.name, err)
		}
	}
	return nil
}

// Save writes the model to filename.
func (m *Model) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := m.WriteWeights(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush weights: %w", err)
	}
	return f.Close()
}

// WriteWeights writes the model in the format LoadWeightsFromReader expects.
func (m *Model) WriteWeights(w io.Writer) error {
	header := FileHeader{
		Magic:      MagicNumber,
		Version:    Version,
		InputSize:  InputSize,
		HiddenSize: HiddenSize,
		PolicySize: policy.ActionSpace,
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, part := range m.parts() {
		if err := binary.Write(w, binary.LittleEndian, part.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	return nil
}

type weightPart struct {
	name string
	data any
}

func (m *Model) parts() []weightPart {
	return []weightPart{
		{"hidden weights", m.HiddenWeights},
		{"hidden bias", m.HiddenBias},
		{"policy weights", m.PolicyWeights},
		{"policy bias", m.PolicyBias},
		{"value weights", m.ValueWeights},
		{"value bias", &m.ValueBias},
	}
}
