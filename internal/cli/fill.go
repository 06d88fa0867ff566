package cli

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/halfpitch/laygrid/pkg/fill"
	"github.com/halfpitch/laygrid/pkg/grid"
	"github.com/halfpitch/laygrid/pkg/halfint"
	"github.com/halfpitch/laygrid/pkg/interval"
	"github.com/halfpitch/laygrid/pkg/tech"
)

// newFillCmd creates the fill command with the allocator subcommands.
func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Run the track-fill allocators",
	}

	cmd.AddCommand(newFillSymCmd())
	cmd.AddCommand(newFillConstCmd())
	cmd.AddCommand(newFillPowerCmd())

	return cmd
}

// =============================================================================
// fill sym / fill const - Symmetric packing
// =============================================================================

// symOpts holds the flags shared by the symmetric packing commands.
type symOpts struct {
	area   int
	nMin   int
	nMax   int
	space  int
	offset int
	cyclic bool
}

func newFillSymCmd() *cobra.Command {
	opts := symOpts{nMin: 1}

	cmd := &cobra.Command{
		Use:   "sym",
		Short: "Pack the maximum symmetric fill into an interval",
		Long: `Pack as many fill blocks as possible into [0, area), keeping the result
symmetric about the interval center. Block lengths stay within
[n-min, n-max] and gaps are at least space wide. With --cyclic the
pattern tiles seamlessly with period area.`,
		Example: `  laygrid fill sym --area 21 --n-min 2 --n-max 5 --space 2
  laygrid fill sym --area 24 --n-min 2 --n-max 5 --space 2 --cyclic`,
		RunE: func(c *cobra.Command, args []string) error {
			ivs, err := fill.SymmetricMax(opts.area, opts.nMin, opts.nMax, opts.space, opts.offset, opts.cyclic)
			if err != nil {
				return err
			}
			printFillResult(opts.area, ivs)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.area, "area", 0, "total interval length")
	cmd.Flags().IntVar(&opts.nMin, "n-min", opts.nMin, "minimum block length")
	cmd.Flags().IntVar(&opts.nMax, "n-max", 0, "maximum block length")
	cmd.Flags().IntVar(&opts.space, "space", 0, "minimum gap between blocks")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "shift applied to the result")
	cmd.Flags().BoolVar(&opts.cyclic, "cyclic", false, "make the pattern tileable with period area")
	_ = cmd.MarkFlagRequired("area")
	_ = cmd.MarkFlagRequired("n-max")
	_ = cmd.MarkFlagRequired("space")

	return cmd
}

func newFillConstCmd() *cobra.Command {
	opts := symOpts{nMin: 1}

	cmd := &cobra.Command{
		Use:   "const",
		Short: "Pack symmetric fill with a bounded edge space",
		Long: `Pack fill blocks into [0, area) symmetrically so that no gap, including
the two edge gaps, exceeds space. Block lengths stay within
[n-min, n-max] when possible.`,
		Example: `  laygrid fill const --area 100 --space 10 --n-min 5 --n-max 8`,
		RunE: func(c *cobra.Command, args []string) error {
			ivs, err := fill.SymmetricConstSpace(opts.area, opts.space, opts.nMin, opts.nMax, opts.offset)
			if err != nil {
				return err
			}
			printFillResult(opts.area, ivs)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.area, "area", 0, "total interval length")
	cmd.Flags().IntVar(&opts.nMin, "n-min", opts.nMin, "minimum block length")
	cmd.Flags().IntVar(&opts.nMax, "n-max", 0, "maximum block length")
	cmd.Flags().IntVar(&opts.space, "space", 0, "maximum gap, edge gaps included")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "shift applied to the result")
	_ = cmd.MarkFlagRequired("area")
	_ = cmd.MarkFlagRequired("n-max")
	_ = cmd.MarkFlagRequired("space")

	return cmd
}

// printFillResult prints the packed intervals, coverage stats and an ASCII
// track map.
func printFillResult(area int, ivs []interval.Interval) {
	filled := 0
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		filled += iv.Len()
		parts[i] = iv.String()
	}

	printSuccess("Packed %d blocks", len(ivs))
	printKeyValue("Blocks", strings.Join(parts, " "))
	if area > 0 {
		printKeyValue("Coverage", fmt.Sprintf("%d/%d (%.0f%%)", filled, area, 100*float64(filled)/float64(area)))
	}
	printNewline()
	for _, line := range trackMapLines(area, ivs, 64) {
		printDetail("%s", line)
	}
}

// trackMapLines renders [0, area) as rows of width cells, '#' where a block
// covers the cell and '.' elsewhere. Blocks wrapping past either edge are
// folded back with period area.
func trackMapLines(area int, ivs []interval.Interval, width int) []string {
	if area <= 0 {
		return nil
	}
	cells := make([]byte, area)
	for i := range cells {
		cells[i] = '.'
	}
	mark := func(lo, hi int) {
		for p := max(lo, 0); p < min(hi, area); p++ {
			cells[p] = '#'
		}
	}
	for _, iv := range ivs {
		mark(iv.Lo, iv.Hi)
		mark(iv.Lo+area, iv.Hi+area)
		mark(iv.Lo-area, iv.Hi-area)
	}

	var lines []string
	for lo := 0; lo < area; lo += width {
		lines = append(lines, string(cells[lo:min(lo+width, area)]))
	}
	return lines
}

// =============================================================================
// fill power - Supply fill from a scenario file
// =============================================================================

// powerScenario is the decoded form of a TOML power-fill scenario: the
// technology and grid files, the fill window, and the wires already placed.
type powerScenario struct {
	Tech       string         `toml:"tech"`
	Grid       string         `toml:"grid"`
	Layer      int            `toml:"layer"`
	SupWidth   int            `toml:"sup-width"`
	FillMargin int            `toml:"fill-margin"`
	EdgeMargin int            `toml:"edge-margin"`
	SupSpacing int            `toml:"sup-spacing"`
	Box        scenarioBox    `toml:"box"`
	Wires      []scenarioWire `toml:"wire"`
}

type scenarioBox struct {
	Left   int `toml:"left"`
	Bottom int `toml:"bottom"`
	Right  int `toml:"right"`
	Top    int `toml:"top"`
}

// scenarioWire is one placed wire array. Base and Pitch are track indices
// and may be half-integral (e.g. 1.5 for the midpoint between tracks 1
// and 2).
type scenarioWire struct {
	Layer  int     `toml:"layer"`
	Base   float64 `toml:"base"`
	Width  int     `toml:"width"`
	Num    int     `toml:"num"`
	Pitch  float64 `toml:"pitch"`
	Lower  int     `toml:"lower"`
	Upper  int     `toml:"upper"`
	Supply string  `toml:"supply"`
}

func newFillPowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "power <scenario.toml>",
		Short: "Compute power fill for a scenario file",
		Long: `Load a power-fill scenario (grid files, fill window and placed wires)
and fill the unused tracks of the target layer with supply wires, split
evenly between VDD and VSS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runPowerFill(c, args[0])
		},
	}
}

func runPowerFill(c *cobra.Command, path string) error {
	logger := loggerFromContext(c.Context())

	scn, err := loadScenario(path)
	if err != nil {
		return err
	}

	t, err := tech.Load(scn.Tech)
	if err != nil {
		return err
	}
	cfg, err := grid.LoadConfig(scn.Grid)
	if err != nil {
		return err
	}
	g, err := grid.FromConfig(t, cfg)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded grid with %d layers", len(g.LayerIDs()))

	used := fill.NewUsedTracks()
	for i, w := range scn.Wires {
		wa, sup, err := w.toWireArray()
		if err != nil {
			return fmt.Errorf("wire %d: %w", i, err)
		}
		used.AddWireArray(wa, scn.FillMargin, sup)
	}
	printInfo("Filling layer %d with %d wires placed", scn.Layer, len(scn.Wires))

	box := fill.BBox{Left: scn.Box.Left, Bottom: scn.Box.Bottom, Right: scn.Box.Right, Top: scn.Box.Top}

	prog := newProgress(logger)
	vdd, vss, err := fill.PowerFillTracks(g, box, scn.Layer, used.TrackSet(scn.Layer),
		scn.SupWidth, scn.FillMargin, scn.EdgeMargin, scn.SupSpacing)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %d VDD and %d VSS wires", countWires(vdd), countWires(vss)))

	printSupplyArrays("VDD", styleVdd, vdd)
	printSupplyArrays("VSS", styleVss, vss)
	for _, w := range supplyWarnings(vdd, vss) {
		printWarning("%s", w)
	}
	return nil
}

// supplyWarnings reports supply sides that ended up with no tracks, so an
// unbalanced or fully blocked scenario is visible at a glance.
func supplyWarnings(vdd, vss []fill.WireArray) []string {
	var warns []string
	if len(vdd) == 0 {
		warns = append(warns, "no VDD tracks placed")
	}
	if len(vss) == 0 {
		warns = append(warns, "no VSS tracks placed")
	}
	return warns
}

// loadScenario reads and decodes a scenario file, applying defaults for
// absent keys.
func loadScenario(path string) (*powerScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scn := powerScenario{SupWidth: 1, SupSpacing: -1}
	if err := toml.Unmarshal(data, &scn); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	if scn.Tech == "" || scn.Grid == "" {
		return nil, fmt.Errorf("scenario %s must name tech and grid files", path)
	}
	return &scn, nil
}

// toWireArray converts the decoded wire into a fill.WireArray plus its
// supply type.
func (w scenarioWire) toWireArray() (fill.WireArray, fill.Supply, error) {
	base, err := halfFromFloat(w.Base)
	if err != nil {
		return fill.WireArray{}, fill.SupplyNone, fmt.Errorf("base: %w", err)
	}
	pitch, err := halfFromFloat(w.Pitch)
	if err != nil {
		return fill.WireArray{}, fill.SupplyNone, fmt.Errorf("pitch: %w", err)
	}
	sup, err := parseSupply(w.Supply)
	if err != nil {
		return fill.WireArray{}, fill.SupplyNone, err
	}

	num := w.Num
	if num == 0 {
		num = 1
	}
	width := w.Width
	if width == 0 {
		width = 1
	}
	wa := fill.WireArray{
		TrackID: fill.TrackID{Layer: w.Layer, Base: base, Width: width, Num: num, Pitch: pitch},
		Lower:   w.Lower,
		Upper:   w.Upper,
	}
	return wa, sup, nil
}

// halfFromFloat converts a track index given as a float into a HalfInt.
// Only whole and half values are representable.
func halfFromFloat(f float64) (halfint.HalfInt, error) {
	n := math.Round(2 * f)
	if math.Abs(2*f-n) > 1e-9 {
		return halfint.HalfInt{}, fmt.Errorf("track index %g is not a multiple of 0.5", f)
	}
	return halfint.New(int(n)), nil
}

// parseSupply parses a supply name from a scenario file.
func parseSupply(s string) (fill.Supply, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return fill.SupplyNone, nil
	case "vdd":
		return fill.SupplyVDD, nil
	case "vss":
		return fill.SupplyVSS, nil
	default:
		return fill.SupplyNone, fmt.Errorf("unknown supply type %q", s)
	}
}

// countWires sums the wire counts over the arrays.
func countWires(list []fill.WireArray) int {
	n := 0
	for _, wa := range list {
		n += wa.Num
	}
	return n
}

// printSupplyArrays prints the wire arrays of one supply type.
func printSupplyArrays(name string, style lipgloss.Style, list []fill.WireArray) {
	printNewline()
	fmt.Println(style.Render(name) + " " + StyleDim.Render(fmt.Sprintf("(%d wires)", countWires(list))))
	for _, wa := range list {
		printDetail("%s", formatWireArray(wa))
	}
}

// formatWireArray renders one wire array for display.
func formatWireArray(wa fill.WireArray) string {
	if wa.Num > 1 {
		return fmt.Sprintf("layer %d  tracks %s..%s step %s  width %d  span [%d, %d)",
			wa.Layer, wa.Base, wa.Base.Add(wa.Pitch.MulInt(wa.Num-1)), wa.Pitch, wa.Width, wa.Lower, wa.Upper)
	}
	return fmt.Sprintf("layer %d  track %s  width %d  span [%d, %d)",
		wa.Layer, wa.Base, wa.Width, wa.Lower, wa.Upper)
}
