package soundboard

// Sequence accumulates quick-access presses for a catalog.
type Sequence struct {
	cat     *Catalog
	pressed Address
}

func NewSequence(cat *Catalog) *Sequence {
	return &Sequence{cat: cat}
}

func (s *Sequence) Pressed() Address {
	return s.pressed
}

func (s *Sequence) Reset() {
	s.pressed = Address{}
}

// Press adds a button to the sequence and resolves it. A single-page
// range or an error clears the sequence so the next press starts over.
func (s *Sequence) Press(button int) (Range, error) {
	next, ok := s.pressed.Push(button)
	if !ok {
		next = NewAddress(button)
	}
	s.pressed = next

	r, err := s.cat.Resolve(s.pressed)
	if err != nil || r.Single() {
		s.Reset()
	}
	return r, err
}
