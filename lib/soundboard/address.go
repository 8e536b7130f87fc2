package soundboard

import (
	"errors"
	"fmt"
	"strings"
)

// MaxQuickAccessLen is the longest button sequence that addresses a page.
const MaxQuickAccessLen = 2

var (
	ErrNoMatch  = errors.New("soundboard: no page matches sequence")
	ErrCapacity = errors.New("soundboard: too many pages for quick access")
)

// Address is a sequence of selector button indices. A page address holds
// one digit (a one-press shortcut) or the full sequence length; a pressed
// sequence holds whatever has been entered so far.
type Address struct {
	digits [MaxQuickAccessLen]int
	n      int
}

// NewAddress panics if more than MaxQuickAccessLen digits are given.
func NewAddress(digits ...int) Address {
	if len(digits) > MaxQuickAccessLen {
		panic(fmt.Sprintf("soundboard: address of length %d", len(digits)))
	}
	var a Address
	a.n = copy(a.digits[:], digits)
	return a
}

func (a Address) Len() int {
	return a.n
}

func (a Address) Full() bool {
	return a.n == MaxQuickAccessLen
}

func (a Address) Digits() []int {
	return append([]int(nil), a.digits[:a.n]...)
}

// Push returns a with d appended. ok is false when a is already full.
func (a Address) Push(d int) (Address, bool) {
	if a.Full() {
		return a, false
	}
	a.digits[a.n] = d
	a.n++
	return a, true
}

// Matches reports whether every position set in both a and pressed agrees.
func (a Address) Matches(pressed Address) bool {
	n := min(a.n, pressed.n)
	for i := 0; i < n; i++ {
		if a.digits[i] != pressed.digits[i] {
			return false
		}
	}
	return true
}

func (a Address) String() string {
	parts := make([]string, MaxQuickAccessLen)
	for i := range parts {
		if i < a.n {
			parts[i] = fmt.Sprint(a.digits[i])
		} else {
			parts[i] = "-"
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Range is an inclusive span of page indices.
type Range struct {
	Min, Max int
}

func (r Range) Single() bool {
	return r.Min == r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// SequenceLen is the smallest m >= 1 with buttons^m >= pages.
func SequenceLen(pages, buttons int) (int, error) {
	if buttons < 1 {
		return 0, ErrCapacity
	}
	m, reach := 1, buttons
	for reach < pages {
		if m == MaxQuickAccessLen {
			return 0, fmt.Errorf("%w: %d pages, %d buttons", ErrCapacity, pages, buttons)
		}
		m++
		reach *= buttons
	}
	return m, nil
}

// OnePressCount is how many leading button values act as one-press
// shortcuts while leaving enough longer sequences for the other pages.
func OnePressCount(pages, buttons, seqLen int) int {
	fanout := 1
	for i := 1; i < seqLen; i++ {
		fanout *= buttons
	}
	reachable := func(k int) int {
		return k + (buttons-k)*fanout
	}
	k := 0
	for k < buttons && reachable(k+1) >= pages {
		k++
	}
	return k
}

// AssignAddresses computes the quick-access address of every page index
// in [0, pages).
func AssignAddresses(pages, buttons int) ([]Address, error) {
	if pages == 0 {
		return nil, nil
	}
	seqLen, err := SequenceLen(pages, buttons)
	if err != nil {
		return nil, err
	}
	k := OnePressCount(pages, buttons, seqLen)

	out := make([]Address, pages)
	for page := range out {
		if page < k {
			out[page] = NewAddress(page)
			continue
		}
		var a Address
		a.n = seqLen
		rest := page - k
		for i := seqLen - 1; i >= 0; i-- {
			a.digits[i] = rest % buttons
			rest /= buttons
		}
		a.digits[0] += k
		out[page] = a
	}
	return out, nil
}

// Resolve returns the range of page indices whose address matches the
// pressed sequence.
func Resolve(addrs []Address, pressed Address) (Range, error) {
	r := Range{Min: -1, Max: -1}
	for i, a := range addrs {
		if !a.Matches(pressed) {
			continue
		}
		if r.Min < 0 {
			r.Min = i
		}
		r.Max = i
	}
	if r.Min < 0 {
		return Range{}, fmt.Errorf("%w %s", ErrNoMatch, pressed)
	}
	return r, nil
}
