package input

import "fmt"

type Button int

const (
	ButtonNone Button = iota

	ButtonUp
	ButtonLeft
	ButtonDown
	ButtonRight
	ButtonEnter

	ButtonYellow
	ButtonRed
	ButtonBlack
	ButtonGreen
	ButtonWhite
	ButtonBlue

	buttonCount
)

var buttonNames = [buttonCount]string{
	"NONE",
	"UP",
	"LEFT",
	"DOWN",
	"RIGHT",
	"ENTER",
	"YELLOW",
	"RED",
	"BLACK",
	"GREEN",
	"WHITE",
	"BLUE",
}

func (b Button) String() string {
	if b < 0 || b >= buttonCount {
		return fmt.Sprintf("Button(%d)", int(b))
	}
	return buttonNames[b]
}

// Selectors lists the colored buttons in sound slot order.
var Selectors = []Button{
	ButtonYellow,
	ButtonRed,
	ButtonBlack,
	ButtonGreen,
	ButtonWhite,
	ButtonBlue,
}

// SelectorIndex returns the sound slot of a colored button.
func SelectorIndex(b Button) (int, bool) {
	for i, s := range Selectors {
		if s == b {
			return i, true
		}
	}
	return 0, false
}
