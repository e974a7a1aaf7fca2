package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed bank.json
var seedBank []byte

// bankFile is the on-disk / embedded question bank format.
type bankFile struct {
	Subjects []Subject `json:"subjects"`
}

// Load parses a question bank from r and builds a validated catalog.
func Load(r io.Reader) (*Catalog, error) {
	var bank bankFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&bank); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return New(bank.Subjects)
}

// LoadFile loads a question bank from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the catalog built from the embedded question bank.
// The embedded bank is validated by tests, so a failure here is a
// packaging bug.
func Default() (*Catalog, error) {
	var bank bankFile
	if err := json.Unmarshal(seedBank, &bank); err != nil {
		return nil, fmt.Errorf("decode embedded bank: %w", err)
	}
	return New(bank.Subjects)
}
