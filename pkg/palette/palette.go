package palette

import "strings"

// DefaultColor is GitHub's grey, used for blank label names.
const DefaultColor = "ededed"

// Slots are the colours handed out to new labels, in order.
var Slots = []string{
	"1d76db", // blue
	"0e8a16", // green
	"d93f0b", // orange
	"5319e7", // purple
	"fbca04", // yellow
	"b60205", // red
	"006b75", // teal
	"c5def5", // light blue
	"bfd4f2", // lavender
	"f9d0c4", // peach
	"c2e0c6", // mint
}

// Palette assigns colours to labels, preferring slots no existing label
// uses. When every slot is taken the least used slot is recycled.
// Label names are matched case-insensitively, as GitHub does.
type Palette struct {
	// Labels maps lower-cased label name to colour.
	Labels map[string]string
	usage  map[string]int
}

// New builds a palette from the repository's current labels
// (name -> hex colour).
func New(existing map[string]string) *Palette {
	p := &Palette{
		Labels: make(map[string]string, len(existing)),
		usage:  make(map[string]int),
	}
	for name, color := range existing {
		color = normalize(color)
		p.Labels[key(name)] = color
		p.usage[color]++
	}
	return p
}

func key(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func normalize(color string) string {
	return strings.ToLower(strings.TrimPrefix(color, "#"))
}

// Has reports whether the label already exists.
func (p *Palette) Has(label string) bool {
	_, ok := p.Labels[key(label)]
	return ok
}

// ColorFor returns the colour of label, assigning one if it is new.
func (p *Palette) ColorFor(label string) string {
	if strings.TrimSpace(label) == "" {
		return DefaultColor
	}
	if color, ok := p.Labels[key(label)]; ok {
		return color
	}
	return p.assign(label)
}

func (p *Palette) assign(label string) string {
	// Try to find an unused slot
	for _, color := range Slots {
		if p.usage[color] == 0 {
			p.take(label, color)
			return color
		}
	}

	// Every slot is taken -> recycle the least used one
	best := Slots[0]
	for _, color := range Slots[1:] {
		if p.usage[color] < p.usage[best] {
			best = color
		}
	}
	p.take(label, best)
	return best
}

func (p *Palette) take(label, color string) {
	p.Labels[key(label)] = color
	p.usage[color]++
}
