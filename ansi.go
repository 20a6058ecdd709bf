package img2palette

import (
	"fmt"
	"strings"
	"sync"
)

const (
	ESC = "\u001b"

	swatchWidth = 6
)

// ANSIMode selects how palette swatches are colored in a terminal.
type ANSIMode int

const (
	// ANSINone prints text only.
	ANSINone ANSIMode = iota
	// ANSI256 maps colors to the nearest xterm 256-color entry.
	ANSI256
	// ANSITrueColor uses 24-bit escape sequences.
	ANSITrueColor
)

var (
	xtermOnce sync.Once
	xtermTree *ColorNode
)

// xtermColor returns the RGB value of an xterm 256-color index in the
// 16-255 range: a 6x6x6 cube followed by a 24 step gray ramp.
func xtermColor(index int) RGB {
	if index >= 232 {
		v := uint8(8 + 10*(index-232))
		return RGB{v, v, v}
	}
	levels := [6]uint8{0, 95, 135, 175, 215, 255}
	i := index - 16
	return RGB{levels[i/36], levels[(i/6)%6], levels[i%6]}
}

// Xterm256Index returns the xterm 256-color index closest to c. The 16
// system colors are skipped since terminals theme them freely.
func Xterm256Index(c RGB) int {
	xtermOnce.Do(func() {
		entries := make([]indexedColor, 0, 240)
		for i := 16; i < 256; i++ {
			entries = append(entries, indexedColor{xtermColor(i), i})
		}
		xtermTree = buildKDTree(entries)
	})
	_, idx := xtermTree.nearest(c)
	return idx
}

// Swatch returns a colored block for c, or "" in ANSINone mode.
func Swatch(c RGB, mode ANSIMode) string {
	blank := strings.Repeat(" ", swatchWidth)
	switch mode {
	case ANSITrueColor:
		return fmt.Sprintf("%s[48;2;%d;%d;%dm%s%s[0m", ESC, c.R, c.G, c.B, blank, ESC)
	case ANSI256:
		return fmt.Sprintf("%s[48;5;%dm%s%s[0m", ESC, Xterm256Index(c), blank, ESC)
	}
	return ""
}

// RenderANSI renders one line per ranked color: a swatch, the hex code,
// the RGB triple and the share of the image.
func RenderANSI(colors []RankedColor, mode ANSIMode) string {
	var out strings.Builder
	for _, c := range colors {
		if mode != ANSINone {
			out.WriteString(Swatch(c.RGB, mode))
			out.WriteByte(' ')
		}
		fmt.Fprintf(&out, "%s  %-18s %5.1f%%\n", c.Hex, c.RGB.String(), c.Percent)
	}
	return out.String()
}
