package classfile

import (
	"testing"
)

func TestLabelReaderIdempotent(t *testing.T) {
	lr := newLabelReader(10)

	a, err := lr.labelAt(4)
	if err != nil {
		t.Fatalf("labelAt(4) failed: %v", err)
	}
	b, err := lr.labelAt(4)
	if err != nil {
		t.Fatalf("labelAt(4) again failed: %v", err)
	}
	if a != b {
		t.Error("same offset produced distinct labels")
	}
	c, _ := lr.labelAt(5)
	if c == a {
		t.Error("distinct offsets share a label")
	}
}

func TestLabelReaderEndSentinel(t *testing.T) {
	lr := newLabelReader(10)
	if _, err := lr.labelAt(10); err != nil {
		t.Errorf("end sentinel rejected: %v", err)
	}
	if _, err := lr.labelAt(11); err == nil {
		t.Error("offset past code length accepted")
	}
	if _, err := lr.labelAt(-1); err == nil {
		t.Error("negative offset accepted")
	}
}

func TestLabelReaderSealRejectsMidInstructionOffsets(t *testing.T) {
	lr := newLabelReader(10)
	if _, err := lr.labelAt(0); err != nil {
		t.Fatal(err)
	}
	if err := lr.seal(map[int]bool{0: true, 3: true}); err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := lr.labelAt(3); err != nil {
		t.Errorf("boundary offset rejected after seal: %v", err)
	}
	if _, err := lr.labelAt(10); err != nil {
		t.Errorf("end sentinel rejected after seal: %v", err)
	}
	if _, err := lr.labelAt(2); err == nil {
		t.Error("mid-instruction offset accepted after seal")
	}
}

func TestLabelReaderSealCatchesEarlierBadTargets(t *testing.T) {
	lr := newLabelReader(10)
	if _, err := lr.labelAt(2); err != nil {
		t.Fatal(err)
	}
	if err := lr.seal(map[int]bool{0: true}); err == nil {
		t.Error("seal accepted a label inside an instruction")
	}
}

func TestLabelWriterAttempts(t *testing.T) {
	lw := newLabelWriter()
	l := &Label{}
	lw.define(l, 8)

	off, err := lw.resolve(l)
	if err != nil || off != 8 {
		t.Fatalf("resolve: got %d, %v", off, err)
	}

	lw.nextAttempt()
	if _, err := lw.resolve(l); err == nil {
		t.Error("stale offset survived nextAttempt")
	}
	lw.define(l, 11)
	if off, _ := lw.resolve(l); off != 11 {
		t.Errorf("redefined offset: got %d", off)
	}

	if _, err := lw.resolve(&Label{}); err == nil {
		t.Error("undefined label resolved")
	}
	if _, err := lw.resolve(nil); err == nil {
		t.Error("nil label resolved")
	}
}
