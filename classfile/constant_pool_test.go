package classfile

import (
	"strings"
	"testing"

	"github.com/wippyai/classfile-kit/classfile/internal/binary"
)

func parsePool(t *testing.T, entries []byte, count uint16) *ConstantPool {
	t.Helper()
	data := append(u16(count), entries...)
	p, err := parseConstantPool(binary.NewReader(data))
	if err != nil {
		t.Fatalf("parseConstantPool failed: %v", err)
	}
	return p
}

func TestPoolLongTakesTwoSlots(t *testing.T) {
	entries := cat(
		[]byte{0x05}, u32(0), u32(7), // #1 Long, #2 reserved
		utf8Entry("after"), // #3
	)
	p := parsePool(t, entries, 4)

	v, err := p.Constant(1)
	if err != nil {
		t.Fatalf("Constant(1) failed: %v", err)
	}
	if v != int64(7) {
		t.Errorf("long: got %v", v)
	}
	if _, err := p.entry(2); err == nil {
		t.Error("expected error for the reserved slot after a Long")
	}
	s, err := p.Utf8(3)
	if err != nil || s != "after" {
		t.Errorf("Utf8(3): got %q, %v", s, err)
	}
}

func TestPoolIndexBounds(t *testing.T) {
	p := parsePool(t, utf8Entry("only"), 2)

	if _, err := p.Utf8(0); err == nil {
		t.Error("expected error for index 0")
	}
	_, err := p.Utf8(2)
	if err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	got := err.Error()
	if !strings.Contains(got, "index 2") || !strings.Contains(got, "pool size 2") {
		t.Errorf("error lacks bounds detail: %s", got)
	}
}

func TestPoolTagMismatch(t *testing.T) {
	p := parsePool(t, utf8Entry("notaclass"), 2)
	if _, err := p.ClassName(1); err == nil {
		t.Error("expected tag mismatch resolving Utf8 as Class")
	}
}

func TestPoolRejectsUnknownTag(t *testing.T) {
	data := cat(u16(2), []byte{0x0D}, u16(0))
	if _, err := parseConstantPool(binary.NewReader(data)); err == nil {
		t.Error("expected error for unknown constant tag")
	}
}

func TestPoolBuilderInternsStructurally(t *testing.T) {
	b := newPoolBuilder()

	a := b.Class("java/lang/Object")
	c := b.Class("java/lang/Object")
	if a != c {
		t.Errorf("identical classes interned twice: %d vs %d", a, c)
	}

	long1 := b.Long(300)
	long2 := b.Long(300)
	if long1 != long2 {
		t.Errorf("identical longs interned twice")
	}
	next := b.Utf8("next")
	if next != long1+2 {
		t.Errorf("entry after Long: got index %d, want %d", next, long1+2)
	}
	if err := b.Err(); err != nil {
		t.Fatalf("builder error: %v", err)
	}

	// The builder's bytes must parse back with the same indices.
	count, err := b.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	data := append(u16(count), b.Bytes()...)
	p, err := parseConstantPool(binary.NewReader(data))
	if err != nil {
		t.Fatalf("rebuilt pool does not parse: %v", err)
	}
	name, err := p.ClassName(a)
	if err != nil || name != "java/lang/Object" {
		t.Errorf("ClassName(%d): got %q, %v", a, name, err)
	}
	v, err := p.Constant(long1)
	if err != nil || v != int64(300) {
		t.Errorf("Constant(%d): got %v, %v", long1, v, err)
	}
}

func TestPoolBuilderEmitsDependenciesInIndexOrder(t *testing.T) {
	b := newPoolBuilder()
	// Class interns its Utf8 first, so the name takes index 1.
	cls := b.Class("A")
	if cls != 2 {
		t.Fatalf("Class: got index %d, want 2", cls)
	}
	count, _ := b.Count()
	data := append(u16(count), b.Bytes()...)
	p, err := parseConstantPool(binary.NewReader(data))
	if err != nil {
		t.Fatalf("pool does not parse: %v", err)
	}
	if s, err := p.Utf8(1); err != nil || s != "A" {
		t.Errorf("Utf8(1): got %q, %v", s, err)
	}
	if name, err := p.ClassName(2); err != nil || name != "A" {
		t.Errorf("ClassName(2): got %q, %v", name, err)
	}
}
