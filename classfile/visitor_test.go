package classfile

import (
	"testing"
)

// countingVisitor records which protocol calls arrive. Child visitors are
// nil unless enabled, exercising byte-level subtree skipping.
type countingVisitor struct {
	interests Interests
	children  bool

	headers     int
	signatures  int
	annotations int
	sourceFile  int
	fields      int
	methods     int
	codes       int
	unknown     int
	ends        int
}

func (v *countingVisitor) Interests() Interests { return v.interests }

func (v *countingVisitor) VisitHeader(Version, AccessFlags, string, string, []string) { v.headers++ }
func (v *countingVisitor) VisitSignature(string)                                      { v.signatures++ }
func (v *countingVisitor) VisitSourceFile(string)                                     { v.sourceFile++ }
func (v *countingVisitor) VisitSourceDebug([]byte)                                    {}
func (v *countingVisitor) VisitNestHost(string)                                       {}
func (v *countingVisitor) VisitNestMembers([]string)                                  {}
func (v *countingVisitor) VisitPermittedSubclasses([]string)                          {}
func (v *countingVisitor) VisitEnclosingMethod(EnclosingMethod)                       {}
func (v *countingVisitor) VisitInnerClass(InnerClass)                                 {}
func (v *countingVisitor) VisitBootstrapMethod(BootstrapMethod)                       {}
func (v *countingVisitor) VisitModule(ModuleAttr, []string, string)                   {}
func (v *countingVisitor) VisitDeprecated()                                           {}
func (v *countingVisitor) VisitSynthetic()                                            {}
func (v *countingVisitor) VisitAnnotations(bool) AnnotationVisitor {
	v.annotations++
	return nil
}
func (v *countingVisitor) VisitRecordComponent(string, string) RecordComponentVisitor { return nil }
func (v *countingVisitor) VisitAttribute(Attribute)                                   { v.unknown++ }
func (v *countingVisitor) VisitEnd()                                                  { v.ends++ }

func (v *countingVisitor) VisitField(AccessFlags, string, string) FieldVisitor {
	v.fields++
	return nil
}

func (v *countingVisitor) VisitMethod(AccessFlags, string, string) MethodVisitor {
	v.methods++
	if !v.children {
		return nil
	}
	return &countingMethodVisitor{parent: v}
}

type countingMethodVisitor struct {
	parent *countingVisitor
}

func (m *countingMethodVisitor) VisitExceptions([]string)                           {}
func (m *countingMethodVisitor) VisitParameter(MethodParameter)                     {}
func (m *countingMethodVisitor) VisitSignature(string)                              {}
func (m *countingMethodVisitor) VisitDeprecated()                                   {}
func (m *countingMethodVisitor) VisitSynthetic()                                    {}
func (m *countingMethodVisitor) VisitAnnotationDefault(ElementValue)                {}
func (m *countingMethodVisitor) VisitAnnotations(bool) AnnotationVisitor            { return nil }
func (m *countingMethodVisitor) VisitParameterAnnotations(bool, int) AnnotationVisitor {
	return nil
}
func (m *countingMethodVisitor) VisitAttribute(Attribute) {}
func (m *countingMethodVisitor) VisitEnd()                {}

func (m *countingMethodVisitor) VisitCode() CodeVisitor {
	m.parent.codes++
	return nil
}

// visitorTestClass has a signature, an annotation, a source file, an
// unrecognized attribute, and a method with a body, so every gate in
// Interests has something to skip.
func visitorTestClass(t *testing.T) []byte {
	t.Helper()
	c := &ClassFile{
		Version:    Version{Major: 61},
		Access:     AccPublic | AccSuper,
		Name:       "Gated",
		SuperName:  "java/lang/Object",
		SourceFile: "Gated.java",
		Signature:  "Ljava/lang/Object;",
		VisibleAnnotations: []Annotation{{
			Type: "Lorg/example/Marker;",
		}},
		Attrs: []Attribute{{Name: "org.example.Opaque", Data: []byte{0xFF}}},
		Fields: []Field{{
			Access: AccPrivate, Name: "n", Desc: "I",
		}},
		Methods: []Method{{
			Access: AccPublic | AccStatic,
			Name:   "noop",
			Desc:   "()V",
			Code: &Code{
				Instructions: []Instruction{{Opcode: OpReturn}},
			},
		}},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	return data
}

func TestInterestsGateOptionalPayloads(t *testing.T) {
	data := visitorTestClass(t)

	v := &countingVisitor{interests: Interests{}, children: true}
	if err := Accept(data, v); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if v.headers != 1 || v.ends != 1 {
		t.Errorf("header/end: got %d/%d, want 1/1", v.headers, v.ends)
	}
	if v.fields != 1 || v.methods != 1 {
		t.Errorf("members: got %d fields, %d methods", v.fields, v.methods)
	}
	if v.signatures != 0 {
		t.Errorf("VisitSignature called despite Signatures interest off")
	}
	if v.annotations != 0 {
		t.Errorf("VisitAnnotations called despite Annotations interest off")
	}
	if v.sourceFile != 0 {
		t.Errorf("SourceFile decoded despite Debug interest off")
	}
	if v.codes != 0 {
		t.Errorf("VisitCode called despite Code interest off")
	}
	if v.unknown != 0 {
		t.Errorf("unknown attribute delivered despite interest off")
	}
}

func TestAllInterestsDeliverEverything(t *testing.T) {
	data := visitorTestClass(t)

	v := &countingVisitor{interests: AllInterests(), children: true}
	if err := Accept(data, v); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if v.signatures != 1 {
		t.Errorf("VisitSignature: got %d calls", v.signatures)
	}
	if v.annotations != 1 {
		t.Errorf("VisitAnnotations: got %d calls", v.annotations)
	}
	if v.sourceFile != 1 {
		t.Errorf("SourceFile: got %d calls", v.sourceFile)
	}
	if v.codes != 1 {
		t.Errorf("VisitCode: got %d calls", v.codes)
	}
	if v.unknown != 1 {
		t.Errorf("unknown attributes: got %d", v.unknown)
	}
}

func TestNilChildSkipsSubtree(t *testing.T) {
	data := visitorTestClass(t)

	// Methods return nil, so VisitCode must never fire even with the
	// Code interest set.
	v := &countingVisitor{interests: AllInterests(), children: false}
	if err := Accept(data, v); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if v.methods != 1 {
		t.Errorf("methods: got %d", v.methods)
	}
	if v.codes != 0 {
		t.Errorf("VisitCode fired under a nil method visitor")
	}
	if v.ends != 1 {
		t.Errorf("VisitEnd: got %d calls", v.ends)
	}
}

func TestVisitAfterEndPanics(t *testing.T) {
	c := &ClassFile{}
	c.VisitEnd()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on visit after VisitEnd")
		}
	}()
	c.VisitSignature("Ljava/lang/Object;")
}
