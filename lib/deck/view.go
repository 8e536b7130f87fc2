package deck

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"quizbuzzer/lib/soundboard"
)

// Screen is the drawing side of a Device.
type Screen interface {
	Model() *Model
	SetKeyImage(key int, img image.Image) error
	SetLCDImage(x, y, w, h int, img image.Image) error
}

// SlotColors match the selector buttons, yellow through blue.
var SlotColors = [soundboard.FilesPerPage]color.RGBA{
	{230, 190, 20, 255},
	{200, 30, 30, 255},
	{20, 20, 20, 255},
	{30, 160, 60, 255},
	{235, 235, 235, 255},
	{30, 80, 200, 255},
}

const (
	KeyPrevPage = soundboard.FilesPerPage
	KeyNextPage = soundboard.FilesPerPage + 1
)

var navColor = color.RGBA{60, 60, 60, 255}

// View mirrors the soundboard page on the deck keys.
type View struct {
	screen Screen
}

func NewView(s Screen) *View {
	return &View{screen: s}
}

func textColor(bg color.RGBA) color.Color {
	if int(bg.R)+int(bg.G)+int(bg.B) > 450 {
		return color.Black
	}
	return color.White
}

func (v *View) ShowPage(p soundboard.Page, index, count int, prompt string) error {
	m := v.screen.Model()
	size := m.KeySize
	width := charsPerLine(size)

	var errs []error
	for slot, bg := range SlotColors {
		var lines []string
		if !p.Sounds[slot].Empty() {
			lines = wrap(p.Sounds[slot].Description(), width)
		}
		img := TextImage(size, size, bg, textColor(bg), lines...)
		errs = append(errs, v.screen.SetKeyImage(slot, img))
	}
	if m.Keys > KeyNextPage {
		errs = append(errs,
			v.screen.SetKeyImage(KeyPrevPage, TextImage(size, size, navColor, color.White, "<")),
			v.screen.SetKeyImage(KeyNextPage, TextImage(size, size, navColor, color.White, ">")),
		)
	}

	title := fmt.Sprintf("%d/%d %s", index+1, count, p.Name)
	if m.LCDWidth > 0 {
		lines := []string{title}
		if prompt != "" {
			lines = append(lines, prompt)
		}
		img := TextImage(m.LCDWidth, m.LCDHeight, color.Black, color.White, lines...)
		errs = append(errs, v.screen.SetLCDImage(0, 0, m.LCDWidth, m.LCDHeight, img))
	}
	return errors.Join(errs...)
}
