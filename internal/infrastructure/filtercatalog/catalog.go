package filtercatalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

// Load reads a filter catalog from a YAML file. An empty path or a missing file yields the
// built-in catalog.
func Load(path string) (domain.FilterCatalog, error) {
	if path == "" {
		return domain.DefaultFilterCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultFilterCatalog(), nil
		}
		return domain.FilterCatalog{}, fmt.Errorf("read filter catalog: %w", err)
	}
	catalog, err := Decode(raw)
	if err != nil {
		return domain.FilterCatalog{}, fmt.Errorf("filter catalog %s: %w", path, err)
	}
	return catalog, nil
}

// Decode parses and validates a YAML catalog. Unknown keys are rejected.
func Decode(raw []byte) (domain.FilterCatalog, error) {
	var catalog domain.FilterCatalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return domain.FilterCatalog{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return domain.FilterCatalog{}, err
	}
	return catalog, nil
}

func Marshal(catalog domain.FilterCatalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(catalog); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}
