package glint

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Cell is one terminal cell: a rune plus the lipgloss style it renders
// with. Wide runes occupy their width in cells; continuation cells hold a
// zero rune and are skipped when flushing.
type Cell struct {
	Rune  rune
	Style lipgloss.Style
}

// EmptyCell returns a blank cell with the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// Surface is a 2D grid of cells the terminal backend draws into. It is the
// mount target for rendering adapters; the host flushes it as a string.
type Surface struct {
	cells  []Cell
	width  int
	height int
}

// NewSurface creates a surface with the given dimensions.
func NewSurface(width, height int) *Surface {
	s := &Surface{width: width, height: height}
	s.cells = make([]Cell, width*height)
	s.Clear()
	return s
}

// Width returns the surface width.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height.
func (s *Surface) Height() int { return s.height }

// InBounds reports whether the coordinates are within the surface.
func (s *Surface) InBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

func (s *Surface) index(x, y int) int { return y*s.width + x }

// Get returns the cell at the coordinates, or an empty cell out of bounds.
func (s *Surface) Get(x, y int) Cell {
	if !s.InBounds(x, y) {
		return EmptyCell()
	}
	return s.cells[s.index(x, y)]
}

// Set places a cell. Out-of-bounds writes are dropped.
func (s *Surface) Set(x, y int, c Cell) {
	if !s.InBounds(x, y) {
		return
	}
	s.cells[s.index(x, y)] = c
}

// Clear resets every cell to empty.
func (s *Surface) Clear() {
	empty := EmptyCell()
	for i := range s.cells {
		s.cells[i] = empty
	}
}

// Resize reallocates the grid. Contents are discarded; the next display
// pass redraws everything.
func (s *Surface) Resize(width, height int) {
	s.width, s.height = width, height
	s.cells = make([]Cell, width*height)
	s.Clear()
}

// FillRect fills a rectangle with the given cell, clipped to the surface.
func (s *Surface) FillRect(x, y, width, height int, c Cell) {
	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			s.Set(x+dx, y+dy, c)
		}
	}
}

// WriteString draws a string with the style, wide-rune aware, clipped to
// maxWidth cells. Returns the number of cells consumed.
func (s *Surface) WriteString(x, y int, text string, style lipgloss.Style, maxWidth int) int {
	written := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if written+w > maxWidth || !s.InBounds(x, y) {
			break
		}
		s.Set(x, y, Cell{Rune: r, Style: style})
		for i := 1; i < w; i++ {
			// Continuation cell under a wide rune.
			s.Set(x+i, y, Cell{Rune: 0, Style: style})
		}
		x += w
		written += w
	}
	return written
}

// String flushes the surface to a styled string for the host view.
func (s *Surface) String() string {
	var b strings.Builder
	for y := 0; y < s.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < s.width; x++ {
			c := s.cells[s.index(x, y)]
			if c.Rune == 0 {
				continue
			}
			b.WriteString(c.Style.Render(string(c.Rune)))
		}
	}
	return b.String()
}
