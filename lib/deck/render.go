package deck

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// TextImage draws lines centred on a w×h background.
func TextImage(w, h int, bg, fg color.Color, lines ...string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	startY := (h-lineHeight*len(lines))/2 + metrics.Ascent.Ceil()

	for i, line := range lines {
		width := font.MeasureString(face, line).Ceil()
		d := &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{fg},
			Face: face,
			Dot:  fixed.P((w-width)/2, startY+i*lineHeight),
		}
		d.DrawString(line)
	}
	return img
}

// wrap breaks s into lines of at most width characters, splitting on
// spaces where possible.
func wrap(s string, width int) []string {
	if width < 1 {
		return nil
	}
	var lines []string
	var cur string
	for _, field := range strings.Fields(s) {
		word := []rune(field)
		for len(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, string(word[:width]))
			word = word[width:]
		}
		switch {
		case cur == "":
			cur = string(word)
		case utf8.RuneCountInString(cur)+1+len(word) <= width:
			cur += " " + string(word)
		default:
			lines = append(lines, cur)
			cur = string(word)
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// charsPerLine is how many basicfont glyphs fit in px with a small margin.
func charsPerLine(px int) int {
	return (px - 8) / face.Advance
}
