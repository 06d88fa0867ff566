package grid

import (
	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/search"
	"github.com/halfpitch/laygrid/pkg/tech"
)

// MaxTrackWidth finds the widest track width (in tracks) such that
// numTracks wires plus the spacing the technology demands around each
// still fit inside totSpace tracks. With halfEndSpace only numTracks gaps
// are counted instead of numTracks+1, which is correct when the group is
// arrayed or has no neighbors.
//
// The spacing rule is itself a function of width, so there is no closed
// form; the search is a monotone binary search keeping the widest feasible
// point. An INFEASIBLE error means not even single-track wires fit.
func (g *Grid) MaxTrackWidth(layerID, numTracks, totSpace int, halfEndSpace bool) (int, error) {
	if err := errors.ValidatePositive("number of tracks", numTracks); err != nil {
		return 0, err
	}
	l := g.mustLayer(layerID)
	numGaps := numTracks + 1
	if halfEndSpace {
		numGaps = numTracks
	}

	it := search.New(1)
	for it.HasNext() {
		trW := it.Next()
		if trW > l.MaxNumTr {
			it.Down()
			continue
		}
		spTracks := g.NumSpaceTracks(layerID, trW, false).Int()
		used := trW*numTracks + spTracks*numGaps
		if used > totSpace {
			it.Down()
		} else {
			it.Save()
			it.Up()
		}
	}
	w, ok := it.LastSaved()
	if !ok {
		return 0, errors.New(errors.ErrCodeInfeasible,
			"%d tracks cannot fit in %d available tracks on layer %d", numTracks, totSpace, layerID)
	}
	return w, nil
}

// EMTargets is the current budget a wire must carry. Length below zero
// disables the short-wire derating factor. When BotWidth or TopWidth is
// positive, the via stack to the adjacent layer of that wire width must
// meet the budget as well.
type EMTargets struct {
	Idc      float64
	IacRms   float64
	IacPeak  float64
	Length   int
	BotWidth int
	TopWidth int
}

// MinTrackWidth finds the narrowest track width (in tracks) whose metal,
// and any requested adjacent vias, carry the given current budget. The
// feasibility predicate is monotone in width; the search is capped at the
// layer's maximum track width and an INFEASIBLE error is returned when
// even that width cannot carry the budget.
func (g *Grid) MinTrackWidth(layerID int, t EMTargets) (int, error) {
	l := g.mustLayer(layerID)
	target := tech.EMCapacity{Idc: t.Idc, IacRms: t.IacRms, IacPeak: t.IacPeak}

	it := search.NewRange(1, l.MaxNumTr+1)
	for it.HasNext() {
		ntr := it.Next()
		width := l.WireWidth(ntr)
		if !g.tech.MetalEM(layerID, width, t.Length).Meets(target) {
			it.Up()
			continue
		}
		if t.BotWidth > 0 && !g.tech.ViaEM(layerID-1, t.BotWidth, width).Meets(target) {
			it.Up()
			continue
		}
		if t.TopWidth > 0 && !g.tech.ViaEM(layerID, width, t.TopWidth).Meets(target) {
			it.Up()
			continue
		}
		it.Save()
		it.Down()
	}
	w, ok := it.LastSaved()
	if !ok {
		return 0, errors.New(errors.ErrCodeInfeasible,
			"no track width up to %d on layer %d meets EM targets", l.MaxNumTr, layerID)
	}
	return w, nil
}

// MinLength returns the technology minimum length for a wire widthNtr
// tracks wide on the layer.
func (g *Grid) MinLength(layerID, widthNtr int) int {
	return g.tech.MinLength(layerID, g.mustLayer(layerID).WireWidth(widthNtr))
}

// ViaExtensions returns how far the bottom and top wires extend past the
// via between botLayer and the layer above, for wires of the given track
// widths.
func (g *Grid) ViaExtensions(botLayer, botNtr, topNtr int) (botExt, topExt int) {
	botW := g.mustLayer(botLayer).WireWidth(botNtr)
	topW := g.mustLayer(botLayer + 1).WireWidth(topNtr)
	return g.tech.ViaExtensions(botLayer, botW, topW)
}
