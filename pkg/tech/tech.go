// Package tech provides technology design-rule queries for the routing grid.
//
// The grid and fill engines never hard-code process rules; they ask a Tech
// for minimum spacing, minimum length, electromigration capacity and via
// geometry. All dimensional queries are in resolution units and all answers
// are pure functions of their inputs.
//
// Table is the standard implementation, backed by per-layer rule tables
// loaded from a TOML technology file (see Load).
package tech

import (
	"maps"
	"slices"

	"github.com/halfpitch/laygrid/pkg/errors"
)

// EMCapacity holds the three current-carrying limits of a wire or via.
type EMCapacity struct {
	Idc     float64 // DC current limit
	IacRms  float64 // AC RMS current limit
	IacPeak float64 // AC peak current limit
}

// Meets reports whether the capacity satisfies all three targets.
func (c EMCapacity) Meets(t EMCapacity) bool {
	return t.Idc <= c.Idc && t.IacRms <= c.IacRms && t.IacPeak <= c.IacPeak
}

// Tech answers process design-rule queries. Implementations must be
// immutable after construction so a single instance can be shared by every
// grid copy.
type Tech interface {
	// Resolution returns the layout unit length in microns, for display.
	Resolution() float64

	// MinSpace returns the minimum same-layer spacing next to a wire of
	// the given width. Spacing grows with width in advanced nodes.
	MinSpace(layer, width int) int

	// MinLength returns the minimum legal wire length at the given width.
	MinLength(layer, width int) int

	// MetalEM returns the electromigration capacity of a wire with the
	// given width and length. A negative length disables the
	// length-derating factor.
	MetalEM(layer, width, length int) EMCapacity

	// ViaEM returns the capacity of the via stack between layer and
	// layer+1 for a w-by-l overlap region.
	ViaEM(botLayer, w, l int) EMCapacity

	// ViaExtensions returns how far the bottom and top wires must extend
	// past the via cut between botLayer and botLayer+1, given both wire
	// widths.
	ViaExtensions(botLayer, botWidth, topWidth int) (botExt, topExt int)
}

// spaceRule is one row of a width-threshold spacing table: the rule applies
// to wires at least Width wide.
type spaceRule struct {
	Width int `toml:"width"`
	Space int `toml:"space"`
}

// layerRules holds the per-layer entries of a technology table.
type layerRules struct {
	ID        int         `toml:"id"`
	Name      string      `toml:"name"`
	MinLength int         `toml:"min-length"`
	Space     []spaceRule `toml:"space"`

	// EM capacity per unit width. Capacity scales linearly with wire
	// width; wires shorter than EMLength get the short-wire bonus factor.
	IdcUnit   float64 `toml:"idc-unit"`
	IrmsUnit  float64 `toml:"irms-unit"`
	IpeakUnit float64 `toml:"ipeak-unit"`
	EMLength  int     `toml:"em-length"`
	EMShort   float64 `toml:"em-short-factor"`

	// Via rules between this layer and the one above.
	ViaCutPitch int     `toml:"via-cut-pitch"`
	ViaIdcCut   float64 `toml:"via-idc-per-cut"`
	ViaIrmsCut  float64 `toml:"via-irms-per-cut"`
	ViaIpeakCut float64 `toml:"via-ipeak-per-cut"`
	ViaBotExt   int     `toml:"via-bot-ext"`
	ViaTopExt   int     `toml:"via-top-ext"`
}

// Table is a Tech backed by explicit per-layer rule tables.
// Construct with Load or NewTable; a Table is immutable afterwards.
type Table struct {
	resolution float64
	layers     map[int]layerRules
}

var _ Tech = (*Table)(nil)

// NewTable builds a Table from a decoded File. It validates that every
// layer has an ID and a non-empty spacing table sorted by width.
func NewTable(f *File) (*Table, error) {
	if f.Resolution <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "resolution must be positive, got %g", f.Resolution)
	}
	layers := make(map[int]layerRules, len(f.Layers))
	for _, lr := range f.Layers {
		if _, dup := layers[lr.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate tech layer %d", lr.ID)
		}
		if len(lr.Space) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "tech layer %d has no spacing table", lr.ID)
		}
		for i := 1; i < len(lr.Space); i++ {
			if lr.Space[i].Width <= lr.Space[i-1].Width {
				return nil, errors.New(errors.ErrCodeInvalidConfig,
					"tech layer %d spacing table not sorted by width", lr.ID)
			}
		}
		layers[lr.ID] = lr
	}
	return &Table{resolution: f.Resolution, layers: layers}, nil
}

// Resolution returns the layout unit length in microns.
func (t *Table) Resolution() float64 { return t.resolution }

// LayerName returns the display name of the layer, or "" if unknown.
func (t *Table) LayerName(layer int) string { return t.layers[layer].Name }

// LayerIDs returns the configured layer IDs in ascending order.
func (t *Table) LayerIDs() []int {
	return slices.Sorted(maps.Keys(t.layers))
}

func (t *Table) rules(layer int) layerRules {
	lr, ok := t.layers[layer]
	if !ok {
		// Unknown layers fall back to the widest defined rule set below
		// them; an empty table yields zero rules, which callers surface
		// as configuration errors at grid construction.
		return layerRules{}
	}
	return lr
}

// MinSpace returns the minimum spacing next to a wire of the given width,
// looked up from the layer's width-threshold table.
func (t *Table) MinSpace(layer, width int) int {
	lr := t.rules(layer)
	sp := 0
	for _, r := range lr.Space {
		if width >= r.Width {
			sp = r.Space
		}
	}
	return sp
}

// MinLength returns the minimum legal wire length on the layer.
// The configured floor is independent of width in this model.
func (t *Table) MinLength(layer, width int) int {
	return t.rules(layer).MinLength
}

// MetalEM returns the wire capacity: unit capacity scaled by width, with a
// short-wire bonus when the wire is shorter than the layer's EM reference
// length. A negative length disables the bonus.
func (t *Table) MetalEM(layer, width, length int) EMCapacity {
	lr := t.rules(layer)
	w := float64(width)
	scale := 1.0
	if length >= 0 && lr.EMLength > 0 && length < lr.EMLength && lr.EMShort > 1 {
		scale = lr.EMShort
	}
	return EMCapacity{
		Idc:     lr.IdcUnit * w * scale,
		IacRms:  lr.IrmsUnit * w,
		IacPeak: lr.IpeakUnit * w,
	}
}

// ViaEM returns the capacity of the via stack between botLayer and the
// layer above, modeled as per-cut capacity times the number of cuts that
// fit the w-by-l overlap region. A region too small for a single cut has
// zero capacity.
func (t *Table) ViaEM(botLayer, w, l int) EMCapacity {
	lr := t.rules(botLayer)
	if lr.ViaCutPitch <= 0 {
		return EMCapacity{}
	}
	nx, ny := w/lr.ViaCutPitch, l/lr.ViaCutPitch
	if nx <= 0 || ny <= 0 {
		return EMCapacity{}
	}
	n := float64(nx * ny)
	return EMCapacity{
		Idc:     lr.ViaIdcCut * n,
		IacRms:  lr.ViaIrmsCut * n,
		IacPeak: lr.ViaIpeakCut * n,
	}
}

// ViaExtensions returns the fixed wire extensions past the via cut between
// botLayer and the layer above. Extensions in this model do not depend on
// the wire widths beyond being defined per layer pair.
func (t *Table) ViaExtensions(botLayer, botWidth, topWidth int) (botExt, topExt int) {
	lr := t.rules(botLayer)
	return lr.ViaBotExt, lr.ViaTopExt
}
