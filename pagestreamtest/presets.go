package pagestreamtest

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/dargueta/pagestream"
	"github.com/dargueta/pagestream/pipe"
)

// Preset names a (pageSize, maxBufferedBytes) pair used by table-driven tests
// across the module, so the same handful of configurations get exercised
// consistently instead of every test file inventing its own numbers.
type Preset struct {
	Name             string `csv:"name"`
	PageSize         int    `csv:"page_size"`
	MaxBufferedBytes int    `csv:"max_buffered_bytes"`
	Notes            string `csv:"notes"`
}

//go:embed presets.csv
var presetsRawCSV string
var presets map[string]Preset

func init() {
	presets = make(map[string]Preset)
	reader := strings.NewReader(presetsRawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Preset) error {
		if _, exists := presets[row.Name]; exists {
			return fmt.Errorf("pagestreamtest: duplicate preset name %q", row.Name)
		}
		presets[row.Name] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// GetPreset looks up a named preset defined in presets.csv. An unknown name
// is a typo in the calling test, not a recoverable condition, so this
// panics rather than returning an error.
func GetPreset(name string) Preset {
	p, ok := presets[name]
	if !ok {
		panic(fmt.Sprintf("pagestreamtest: no preset named %q", name))
	}
	return p
}

// Presets returns every preset defined in presets.csv, for tests that want
// to range over all of them rather than naming one.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	return out
}

// Config converts the preset into a pagestream.Config.
func (p Preset) Config() pagestream.Config {
	return pagestream.Config{PageSize: p.PageSize, MaxBufferedBytes: p.MaxBufferedBytes}
}

// PipeConfig converts the preset into a pipe.Config.
func (p Preset) PipeConfig() pipe.Config {
	return pipe.Config{PageSize: p.PageSize, MaxBufferedBytes: p.MaxBufferedBytes}
}
