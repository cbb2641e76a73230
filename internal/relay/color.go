package relay

import "sync"

// ColorPicker represents a strategy for choosing a display color for new sessions.
type ColorPicker interface {
	Next() string
}

// defaultColorPalette holds the hex colors handed out in join order. Colors
// are opaque tokens on the wire; the relay never interprets them.
var defaultColorPalette = []string{
	"#D32F2F",
	"#1976D2",
	"#388E3C",
	"#F57C00",
	"#7B1FA2",
	"#0288D1",
}

func newRoundRobinColorPicker(palette []string) ColorPicker {
	if len(palette) == 0 {
		palette = defaultColorPalette
	}
	return &roundRobinColorPicker{
		palette: append([]string(nil), palette...),
	}
}

// roundRobinColorPicker walks the palette in order and wraps around once it is
// exhausted. Colors are not reclaimed on disconnect.
type roundRobinColorPicker struct {
	mu      sync.Mutex
	palette []string
	index   int
}

func (p *roundRobinColorPicker) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	color := p.palette[p.index]
	p.index = (p.index + 1) % len(p.palette)
	return color
}
