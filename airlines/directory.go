// airlines/directory.go

// Package airlines resolves airline codes and names to a canonical identity
// backed by a small, human-editable directory.
package airlines

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gewnthar/flightscrape/models"
)

//go:embed airlines.yaml
var defaultDirectoryYAML []byte

// Entry is one row of the directory file.
type Entry struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Logo string `yaml:"logo"`
}

type directoryFile struct {
	Airlines []Entry `yaml:"airlines"`
}

// Directory is read-only after construction and safe for concurrent use.
type Directory struct {
	byCode map[string]Entry
	byName map[string]Entry
}

var (
	defaultOnce sync.Once
	defaultDir  *Directory
)

// Default returns the directory built from the embedded airlines.yaml.
func Default() *Directory {
	defaultOnce.Do(func() {
		entries, err := ParseEntries(bytes.NewReader(defaultDirectoryYAML))
		if err != nil {
			// The embedded file is part of the build; a parse failure is a programming error.
			panic(fmt.Sprintf("airlines: embedded directory is invalid: %v", err))
		}
		defaultDir = New(entries)
	})
	return defaultDir
}

// New builds a directory. Later entries override earlier ones with the same code.
func New(entries []Entry) *Directory {
	d := &Directory{
		byCode: make(map[string]Entry, len(entries)),
		byName: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		code := normalizeCode(e.Code)
		if code == "" {
			continue
		}
		e.Code = code
		if prev, ok := d.byCode[code]; ok {
			key := strings.ToLower(strings.TrimSpace(prev.Name))
			if d.byName[key].Code == code {
				delete(d.byName, key)
			}
		}
		d.byCode[code] = e
		if key := strings.ToLower(strings.TrimSpace(e.Name)); key != "" {
			if _, taken := d.byName[key]; !taken {
				d.byName[key] = e
			}
		}
	}
	return d
}

// ParseEntries decodes a directory YAML document.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var f directoryFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode airline directory: %w", err)
	}
	return f.Airlines, nil
}

// LoadWithOverrides returns the default entries merged with those from path.
// An empty path returns Default().
func LoadWithOverrides(path string) (*Directory, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	base, err := ParseEntries(bytes.NewReader(defaultDirectoryYAML))
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open airline directory %s: %w", path, err)
	}
	defer file.Close()

	extra, err := ParseEntries(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse airline directory %s: %w", path, err)
	}
	return New(append(base, extra...)), nil
}

// Len reports the number of known codes.
func (d *Directory) Len() int { return len(d.byCode) }

// Lookup finds an entry by code, case-insensitively.
func (d *Directory) Lookup(code string) (Entry, bool) {
	e, ok := d.byCode[normalizeCode(code)]
	return e, ok
}

// LookupByName finds an entry by display name, case-insensitively.
func (d *Directory) LookupByName(name string) (Entry, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Entry{}, false
	}
	e, ok := d.byName[key]
	return e, ok
}

// Resolve maps a code/name pair to an AirlineIdentity. A known code wins,
// then a reverse lookup by name; otherwise the trimmed inputs are returned
// with no logo. Empty strings are treated as absent.
func (d *Directory) Resolve(code, name string) models.AirlineIdentity {
	codeNorm := normalizeCode(code)
	if e, ok := d.byCode[codeNorm]; ok && codeNorm != "" {
		return e.identity()
	}
	if e, ok := d.LookupByName(name); ok {
		return e.identity()
	}
	return models.AirlineIdentity{
		Code: optional(codeNorm),
		Name: optional(strings.TrimSpace(name)),
	}
}

// Resolve uses the default directory.
func Resolve(code, name string) models.AirlineIdentity {
	return Default().Resolve(code, name)
}

func (e Entry) identity() models.AirlineIdentity {
	return models.AirlineIdentity{
		Code: optional(e.Code),
		Name: optional(e.Name),
		Logo: optional(e.Logo),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
