package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/trafficsim"
	"github.com/anggasct/trafficsim/pkg/core"
)

// ClockSource exposes the simulation clock for rendering. *trafficsim.Engine
// satisfies it.
type ClockSource interface {
	ClockTransitions() []trafficsim.ClockTransition
	State() core.ClockState
}

// NetworkSource exposes the intersections for rendering. *trafficsim.Engine
// satisfies it.
type NetworkSource interface {
	Intersections() []core.Intersection
}

// DOTGenerator generates Graphviz DOT format representations of the
// simulation clock and the intersection network
type DOTGenerator struct {
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowActions       bool
	HighlightCurrent  bool
	RankDirection     string // "TB", "LR", "BT", "RL"
	NodeShape         string
	TransitionStyle   string
	IntersectionShape string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowActions:       true,
		HighlightCurrent:  true,
		RankDirection:     "LR",
		NodeShape:         "box",
		TransitionStyle:   "solid",
		IntersectionShape: "circle",
	}
}

// NewDOTGenerator creates a new DOT generator
func NewDOTGenerator(options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{options: opts}
}

// Clock creates a DOT representation of the clock's state machine
func (g *DOTGenerator) Clock(source ClockSource) string {
	var dot strings.Builder

	dot.WriteString("digraph SimulationClock {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	current := source.State()

	dot.WriteString("  // States\n")
	for _, state := range []core.ClockState{core.ClockStopped, core.ClockRunning} {
		fillColor := "lightblue"
		label := string(state)
		if state == core.ClockStopped {
			label += "\\n(initial)"
		}
		if g.options.HighlightCurrent && state == current {
			fillColor = "lightgreen"
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" [style=\"filled\" fillcolor=%s label=\"%s\"];\n",
			state, fillColor, label))
	}

	dot.WriteString("\n  // Transitions\n")
	for _, t := range source.ClockTransitions() {
		label := t.Command
		if g.options.ShowActions && t.Action != nil {
			label += " / action"
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\" style=%s];\n",
			t.From, t.To, label, g.options.TransitionStyle))
	}

	dot.WriteString("}\n")
	return dot.String()
}

// Network creates a DOT representation of the intersections, filled with the
// colour of their current signal phase
func (g *DOTGenerator) Network(source NetworkSource) string {
	var dot strings.Builder

	dot.WriteString("graph TrafficNetwork {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s style=\"filled\"];\n\n", g.options.IntersectionShape))

	for _, in := range source.Intersections() {
		dot.WriteString(fmt.Sprintf("  \"%s\" [fillcolor=%s label=\"%s\\n%d veh, %d km/h\\n[%s]\"];\n",
			in.ID, phaseColor(in.Signal), in.Name, in.VehicleCount, in.AverageSpeed, in.Congestion))
	}

	dot.WriteString("}\n")
	return dot.String()
}

func phaseColor(phase core.Phase) string {
	switch phase {
	case core.PhaseRed:
		return "lightcoral"
	case core.PhaseYellow:
		return "lightyellow"
	case core.PhaseGreen:
		return "lightgreen"
	default:
		return "lightgray"
	}
}

// ClockToFile writes the clock's DOT representation to a file
func (g *DOTGenerator) ClockToFile(source ClockSource, filename string) error {
	return os.WriteFile(filename, []byte(g.Clock(source)), 0644)
}

// SVG converts DOT content to SVG by calling Graphviz
func SVG(dotContent string) (string, error) {
	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// ClockDOT renders the clock with default options
func ClockDOT(source ClockSource) string {
	return NewDOTGenerator().Clock(source)
}
