package tech

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/halfpitch/laygrid/pkg/errors"
)

// File is the decoded form of a TOML technology file.
//
// Example:
//
//	resolution = 0.001
//
//	[[layer]]
//	id = 4
//	name = "M4"
//	min-length = 40
//	idc-unit = 0.5
//	irms-unit = 1.2
//	ipeak-unit = 3.0
//	via-cut-pitch = 36
//	via-idc-per-cut = 0.1
//	  [[layer.space]]
//	  width = 0
//	  space = 32
//	  [[layer.space]]
//	  width = 100
//	  space = 64
type File struct {
	Resolution float64      `toml:"resolution"`
	Layers     []layerRules `toml:"layer"`
}

// Load reads and validates a TOML technology file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read tech file %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates TOML technology data.
func Parse(data []byte) (*Table, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode tech file")
	}
	return NewTable(&f)
}
