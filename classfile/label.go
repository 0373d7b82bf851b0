package classfile

import (
	"github.com/wippyai/classfile-kit/errors"
)

// Label identifies a position in one method's bytecode. Labels are opaque:
// they are stable under relabeling and insertion by downstream consumers
// and carry no byte offset of their own. Two positions in the same body
// compare equal exactly when their *Label pointers are equal.
type Label struct {
	id int
}

// LabelRange is a half-open [Start, End) span of bytecode. End may be the
// body's one-past-the-last-instruction label.
type LabelRange struct {
	Start *Label
	End   *Label
}

// labelReader maps byte offsets to Labels while decoding one method body.
// Created fresh per body and discarded when the body finishes.
type labelReader struct {
	codeLen int
	byOff   map[int]*Label
	next    int

	// bounds holds the instruction boundary set once the bytecode has
	// been walked; labelAt then rejects offsets inside an instruction.
	bounds map[int]bool
}

func newLabelReader(codeLen int) *labelReader {
	return &labelReader{
		codeLen: codeLen,
		byOff:   make(map[int]*Label),
	}
}

// labelAt returns the Label for a byte offset, creating it on first use.
// Re-requesting an offset returns the same Label. The offset equal to the
// code length is the valid end sentinel; anything beyond is an error.
func (t *labelReader) labelAt(off int) (*Label, error) {
	if off < 0 || off > t.codeLen {
		return nil, errors.InvalidReference(errors.PhaseResolve, nil,
			"label offset %d out of bounds (code length %d)", off, t.codeLen)
	}
	if l, ok := t.byOff[off]; ok {
		return l, nil
	}
	if t.bounds != nil && off != t.codeLen && !t.bounds[off] {
		return nil, errors.InvalidReference(errors.PhaseResolve, nil,
			"label offset %d is not an instruction boundary", off)
	}
	l := &Label{id: t.next}
	t.next++
	t.byOff[off] = l
	return l, nil
}

// at returns the label minted for a byte offset, or nil when nothing
// references that position.
func (t *labelReader) at(off int) *Label {
	return t.byOff[off]
}

// seal fixes the instruction boundary set and verifies every label minted
// so far sits on a boundary or at the end sentinel.
func (t *labelReader) seal(bounds map[int]bool) error {
	t.bounds = bounds
	for off := range t.byOff {
		if off != t.codeLen && !bounds[off] {
			return errors.InvalidReference(errors.PhaseDecode, nil,
				"branch target %d is not an instruction boundary", off)
		}
	}
	return nil
}

// labelWriter maps Labels back to byte offsets while encoding one method
// body. The encoder records each label's offset as it lays instructions
// out; branch operands resolve against the completed table. When an
// operand width assumption changes the whole layout shifts, so the
// encoder clears the table and retries.
type labelWriter struct {
	offsets map[*Label]int
	attempt int
}

func newLabelWriter() *labelWriter {
	return &labelWriter{offsets: make(map[*Label]int)}
}

// define records the byte offset of a label in the current attempt.
func (t *labelWriter) define(l *Label, off int) {
	t.offsets[l] = off
}

// resolve returns the byte offset of a label, which must have been
// defined during the current attempt.
func (t *labelWriter) resolve(l *Label) (int, error) {
	if l == nil {
		return 0, errors.InvalidReference(errors.PhaseEncode, nil, "nil label")
	}
	off, ok := t.offsets[l]
	if !ok {
		return 0, errors.InvalidReference(errors.PhaseEncode, nil,
			"label not defined in this method body")
	}
	return off, nil
}

// nextAttempt discards all offsets for a fresh layout pass.
func (t *labelWriter) nextAttempt() {
	t.offsets = make(map[*Label]int)
	t.attempt++
}
