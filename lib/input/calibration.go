package input

const Tolerance = 150

type Reference struct {
	Button  Button
	Reading int
}

type Calibration struct {
	Name       string
	References []Reference
	Tolerance  int
}

// Resistor ladder readings of the 12-bit ADC behind each bank.
var NavCalibration = Calibration{
	Name: "nav",
	References: []Reference{
		{ButtonNone, 3626},
		{ButtonUp, 2384},
		{ButtonLeft, 150},
		{ButtonDown, 471},
		{ButtonRight, 1700},
		{ButtonEnter, 1012},
	},
	Tolerance: Tolerance,
}

var SelectorCalibration = Calibration{
	Name: "selector",
	References: []Reference{
		{ButtonNone, 3513},
		{ButtonYellow, 1643},
		{ButtonRed, 2278},
		{ButtonBlack, 0},
		{ButtonGreen, 1073},
		{ButtonWhite, 2913},
		{ButtonBlue, 439},
	},
	Tolerance: Tolerance,
}

func (c Calibration) Classify(reading int) Button {
	best := ButtonNone
	bestDist := c.Tolerance
	for _, ref := range c.References {
		d := reading - ref.Reading
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best = ref.Button
			bestDist = d
		}
	}
	return best
}

// Reading returns the reference value for b, used to synthesize readings
// from sources that report buttons directly.
func (c Calibration) Reading(b Button) (int, bool) {
	for _, ref := range c.References {
		if ref.Button == b {
			return ref.Reading, true
		}
	}
	return 0, false
}
