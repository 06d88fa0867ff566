// Package grid implements the routing-grid coordinate model.
//
// A routing grid is a stack of metal layers, each carrying parallel tracks
// at a fixed pitch. Track indices are counted at half-track resolution (see
// package halfint): even indices are physical track centers, odd indices are
// midpoints between adjacent tracks. All dimensions are integers in
// resolution units, and track widths and spacings are kept even so that
// every half-track center lands on an integer coordinate.
//
// The grid answers two families of questions: exact and rounded conversion
// between physical coordinates and track indices, and derived quantities
// that depend on technology rules, such as the minimum wire width meeting an
// electromigration target or the tiling quantum (block pitch) that keeps a
// floorplan on-grid for every layer below it.
package grid

import (
	"slices"

	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/tech"
)

// Direction is the orientation of a layer's tracks.
type Direction int

const (
	// DirX means tracks run horizontally; the track coordinate axis is Y.
	DirX Direction = iota
	// DirY means tracks run vertically; the track coordinate axis is X.
	DirY
)

// Perp returns the other direction.
func (d Direction) Perp() Direction {
	if d == DirX {
		return DirY
	}
	return DirX
}

func (d Direction) String() string {
	if d == DirX {
		return "x"
	}
	return "y"
}

// Layer describes one routing layer. Width and Space are even integers in
// resolution units; Offset is the coordinate of track 0. BlockPitch is
// derived by the grid and is zero for private layers added after
// construction.
type Layer struct {
	ID         int
	Dir        Direction
	Width      int
	Space      int
	Offset     int
	MaxNumTr   int
	BlockPitch int
}

// Pitch returns the track pitch, Width + Space. Always even.
func (l Layer) Pitch() int { return l.Width + l.Space }

// WireWidth returns the physical width of a wire that is ntr tracks wide.
func (l Layer) WireWidth(ntr int) int { return ntr*l.Pitch() - l.Space }

// Grid is a routing grid over an immutable technology. A Grid is built once
// and is immutable afterwards except for AddLayer; Copy returns an
// independent grid sharing only the technology reference, so independent
// templates may be generated concurrently as long as each owns its copy.
type Grid struct {
	tech   tech.Tech
	ids    []int // sorted layer IDs
	layers map[int]*Layer
}

// New creates a routing grid from parallel per-layer lists. Layer IDs must
// be strictly increasing; track directions alternate starting from botDir.
// Spacings and widths must be positive even integers. maxNumTr applies to
// every layer; use AddLayer for per-layer overrides.
func New(t tech.Tech, layers, spaces, widths []int, botDir Direction, maxNumTr int) (*Grid, error) {
	n := len(layers)
	if err := errors.ValidateSameLength("spaces", len(spaces), n); err != nil {
		return nil, err
	}
	if err := errors.ValidateSameLength("widths", len(widths), n); err != nil {
		return nil, err
	}
	g := &Grid{tech: t, layers: make(map[int]*Layer, n)}
	dir := botDir
	for i, id := range layers {
		if err := g.AddLayer(id, spaces[i], widths[i], dir, maxNumTr, false, false); err != nil {
			return nil, err
		}
		dir = dir.Perp()
	}
	g.updateBlockPitch()
	return g, nil
}

// Tech returns the technology this grid was built against.
func (g *Grid) Tech() tech.Tech { return g.tech }

// LayerIDs returns the sorted layer IDs.
func (g *Grid) LayerIDs() []int { return slices.Clone(g.ids) }

// Layer returns the record for the given layer ID.
func (g *Grid) Layer(id int) (Layer, error) {
	l, ok := g.layers[id]
	if !ok {
		return Layer{}, errors.New(errors.ErrCodeInvalidLayer, "layer %d not on routing grid", id)
	}
	return *l, nil
}

// mustLayer returns the layer record and panics on unknown IDs. It backs
// the conversion methods whose signatures have no error slot; callers
// validate layer IDs at the API boundary.
func (g *Grid) mustLayer(id int) *Layer {
	l, ok := g.layers[id]
	if !ok {
		panic(errors.New(errors.ErrCodeInvalidLayer, "layer %d not on routing grid", id))
	}
	return l
}

// Direction returns the track direction of the layer.
func (g *Grid) Direction(id int) Direction { return g.mustLayer(id).Dir }

// TrackPitch returns the track pitch of the layer.
func (g *Grid) TrackPitch(id int) int { return g.mustLayer(id).Pitch() }

// TrackWidth returns the physical width of a wire ntr tracks wide.
func (g *Grid) TrackWidth(id, ntr int) int { return g.mustLayer(id).WireWidth(ntr) }

// AddLayer registers a layer on the grid. It is used both during
// construction and to overlay a private, template-local layer on an
// existing grid. Re-registering an existing ID without override is a
// configuration error. Private layers do not update block pitches; do not
// use AddLayer to modify top-level layers.
//
// With shareTrack set, track 0 sits on the layer boundary (offset 0)
// instead of half a pitch in, so adjacent blocks share their edge track.
func (g *Grid) AddLayer(id, space, width int, dir Direction, maxNumTr int, shareTrack, override bool) error {
	if _, exists := g.layers[id]; exists && !override {
		return errors.New(errors.ErrCodeLayerExists, "layer %d already on routing grid", id)
	}
	if err := errors.ValidatePositive("track width", width); err != nil {
		return err
	}
	if err := errors.ValidatePositive("track spacing", space); err != nil {
		return err
	}
	if err := errors.ValidateEven("track width", width); err != nil {
		return err
	}
	if err := errors.ValidateEven("track spacing", space); err != nil {
		return err
	}
	if err := errors.ValidatePositive("max track width", maxNumTr); err != nil {
		return err
	}
	offset := 0
	if !shareTrack {
		offset = (space + width) / 2
	}
	if _, exists := g.layers[id]; !exists {
		g.ids = append(g.ids, id)
		slices.Sort(g.ids)
	}
	g.layers[id] = &Layer{
		ID:       id,
		Dir:      dir,
		Width:    width,
		Space:    space,
		Offset:   offset,
		MaxNumTr: maxNumTr,
	}
	return nil
}

// SetOffset overrides the coordinate of track 0 on the layer.
func (g *Grid) SetOffset(id, offset int) error {
	l, ok := g.layers[id]
	if !ok {
		return errors.New(errors.ErrCodeInvalidLayer, "layer %d not on routing grid", id)
	}
	l.Offset = offset
	return nil
}

// updateBlockPitch computes the tiling quantum of every layer in increasing
// order: the LCM of the layer's own pitch with the block pitches of all
// strictly-lower layers sharing its direction. The result is divisible by
// every same-direction pitch at or below the layer, so a rectangle
// quantized to it is on-grid for all of them at once.
func (g *Grid) updateBlockPitch() {
	var pitches []int
	var dirs []Direction
	for _, id := range g.ids {
		l := g.layers[id]
		bp := l.Pitch()
		for i, p := range pitches {
			if dirs[i] == l.Dir {
				bp = lcm(bp, p)
			}
		}
		pitches = append(pitches, bp)
		dirs = append(dirs, l.Dir)
		l.BlockPitch = bp
	}
}

// BlockPitch returns the tiling quantum of the layer.
func (g *Grid) BlockPitch(id int) int { return g.mustLayer(id).BlockPitch }

// BlockSize returns the unit block dimensions (width, height) for a
// floorplan whose top routing layer is id. The pitch along each axis comes
// from the top layer and the next routing layer below it; the bottom
// layer's own pitch quantizes both axes when no lower layer exists.
func (g *Grid) BlockSize(id int) (w, h int) {
	top := g.mustLayer(id)
	hp := top.BlockPitch
	wp := hp
	if i, ok := slices.BinarySearch(g.ids, id); ok && i > 0 {
		wp = g.layers[g.ids[i-1]].BlockPitch
	}
	if top.Dir == DirY {
		hp, wp = wp, hp
	}
	return wp, hp
}

// SizeDimension converts a quantized size tuple (top layer, nx, ny blocks)
// to physical width and height.
func (g *Grid) SizeDimension(topLayer, nx, ny int) (w, h int) {
	bw, bh := g.BlockSize(topLayer)
	return nx * bw, ny * bh
}

// SizeTuple quantizes physical dimensions to whole blocks of the top
// layer. With roundUp set, dimensions grow to the next block boundary;
// otherwise a dimension not already on a boundary is an off-grid error.
func (g *Grid) SizeTuple(topLayer, w, h int, roundUp bool) (nx, ny int, err error) {
	bw, bh := g.BlockSize(topLayer)
	nx, err = quantize(w, bw, roundUp, "width")
	if err != nil {
		return 0, 0, err
	}
	ny, err = quantize(h, bh, roundUp, "height")
	if err != nil {
		return 0, 0, err
	}
	return nx, ny, nil
}

func quantize(dim, pitch int, roundUp bool, name string) (int, error) {
	q, r := dim/pitch, dim%pitch
	if r == 0 {
		return q, nil
	}
	if roundUp {
		return q + 1, nil
	}
	return 0, errors.New(errors.ErrCodeOffGrid, "%s %d not a multiple of block pitch %d", name, dim, pitch)
}

// NumTracks returns how many track pitches of the layer fit across a block
// of the given size tuple.
func (g *Grid) NumTracks(topLayer, nx, ny, layerID int) int {
	w, h := g.SizeDimension(topLayer, nx, ny)
	l := g.mustLayer(layerID)
	if l.Dir == DirX {
		return h / l.Pitch()
	}
	return w / l.Pitch()
}

// Copy returns a deep copy of the grid sharing only the technology
// reference.
func (g *Grid) Copy() *Grid {
	out := &Grid{
		tech:   g.tech,
		ids:    slices.Clone(g.ids),
		layers: make(map[int]*Layer, len(g.layers)),
	}
	for id, l := range g.layers {
		cp := *l
		out.layers[id] = &cp
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}
