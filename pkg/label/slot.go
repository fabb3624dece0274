package label

// Slot holds the label currently shown and orders replacements.
//
// Every request takes a sequence number from Next. Offer installs a label
// only if it is newer than the one shown, so a slow request that finishes
// after a later one is dropped instead of overwriting it. The previous label
// is released on replacement. A Slot belongs to a single goroutine.
type Slot struct {
	issued   uint64
	shown    uint64
	finished uint64 // newest request that succeeded or failed
	label    *Label
}

// Next issues the sequence number for a new request.
func (s *Slot) Next() uint64 {
	s.issued++
	return s.issued
}

// Offer installs l if it is newer than the current label and reports
// whether it did.
func (s *Slot) Offer(l *Label) bool {
	if l == nil || l.Seq <= s.shown {
		return false
	}
	s.shown = l.Seq
	s.finished = max(s.finished, l.Seq)
	s.label = l
	return true
}

// Fail records that request seq finished without a label. The current
// label stays on display.
func (s *Slot) Fail(seq uint64) {
	s.finished = max(s.finished, seq)
}

// Current returns the label on display, nil before the first one arrives.
func (s *Slot) Current() *Label {
	return s.label
}

// Pending reports whether the newest request is still outstanding.
func (s *Slot) Pending() bool {
	return s.issued > s.finished
}
