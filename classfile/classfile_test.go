package classfile

import (
	"bytes"
	"testing"
)

func u16(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func u32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func utf8Entry(s string) []byte {
	out := []byte{0x01}
	out = append(out, u16(uint16(len(s)))...)
	return append(out, s...)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// goldenClass is the serialized form of goldenTree: public abstract class
// Example extends java/lang/Object with a constant field and an abstract
// method.
func goldenClass() []byte {
	return cat(
		u32(Magic),
		u16(0), u16(52), // version
		u16(11), // constant_pool_count
		utf8Entry("Example"),          // #1
		[]byte{0x07}, u16(1),          // #2 Class
		utf8Entry("java/lang/Object"), // #3
		[]byte{0x07}, u16(3),          // #4 Class
		utf8Entry("VALUE"),            // #5
		utf8Entry("I"),                // #6
		[]byte{0x03}, u32(42),         // #7 Integer
		utf8Entry("ConstantValue"),    // #8
		utf8Entry("run"),              // #9
		utf8Entry("()V"),              // #10
		u16(0x0421), // ACC_PUBLIC | ACC_SUPER | ACC_ABSTRACT
		u16(2),      // this_class
		u16(4),      // super_class
		u16(0),      // interfaces_count
		u16(1),      // fields_count
		u16(0x0019), u16(5), u16(6), // VALUE I, public static final
		u16(1),                    // attributes_count
		u16(8), u32(2), u16(7),    // ConstantValue -> 42
		u16(1),                    // methods_count
		u16(0x0401), u16(9), u16(10), // run ()V, public abstract
		u16(0), // attributes_count
		u16(0), // class attributes_count
	)
}

func goldenTree() *ClassFile {
	return &ClassFile{
		Version:   Version{Major: 52},
		Access:    AccPublic | AccSuper | AccAbstract,
		Name:      "Example",
		SuperName: "java/lang/Object",
		Fields: []Field{{
			Access:        AccPublic | AccStatic | AccFinal,
			Name:          "VALUE",
			Desc:          "I",
			ConstantValue: int32(42),
		}},
		Methods: []Method{{
			Access: AccPublic | AccAbstract,
			Name:   "run",
			Desc:   "()V",
		}},
	}
}

func TestReadClassGolden(t *testing.T) {
	c, err := ReadClass(goldenClass())
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	if c.Name != "Example" {
		t.Errorf("name: got %q, want %q", c.Name, "Example")
	}
	if c.SuperName != "java/lang/Object" {
		t.Errorf("super: got %q", c.SuperName)
	}
	if c.Version.Major != 52 || c.Version.Minor != 0 {
		t.Errorf("version: got %d.%d", c.Version.Major, c.Version.Minor)
	}
	if !c.Access.Has(AccPublic) || !c.Access.Has(AccAbstract) {
		t.Errorf("access: got %#x", c.Access)
	}
	if len(c.Fields) != 1 {
		t.Fatalf("fields: got %d, want 1", len(c.Fields))
	}
	f := c.Fields[0]
	if f.Name != "VALUE" || f.Desc != "I" {
		t.Errorf("field: got %s %s", f.Name, f.Desc)
	}
	if v, ok := f.ConstantValue.(int32); !ok || v != 42 {
		t.Errorf("constant value: got %v (%T)", f.ConstantValue, f.ConstantValue)
	}
	if len(c.Methods) != 1 || c.Methods[0].Name != "run" || c.Methods[0].Desc != "()V" {
		t.Fatalf("methods: got %+v", c.Methods)
	}
	if c.Methods[0].Code != nil {
		t.Errorf("abstract method should have no code")
	}
}

func TestWriteClassGolden(t *testing.T) {
	out, err := WriteClass(goldenTree())
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	if !bytes.Equal(out, goldenClass()) {
		t.Errorf("encoded bytes differ from golden\ngot:  %x\nwant: %x", out, goldenClass())
	}
}

func TestRoundTripIsByteIdentical(t *testing.T) {
	golden := goldenClass()
	c, err := ReadClass(golden)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	out, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	if !bytes.Equal(out, golden) {
		t.Errorf("round trip changed bytes\ngot:  %x\nwant: %x", out, golden)
	}
}

func TestRoundTripWithCode(t *testing.T) {
	target := &Label{}
	c := &ClassFile{
		Version:   Version{Major: 61},
		Access:    AccPublic | AccSuper,
		Name:      "Branchy",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Access: AccPublic | AccStatic,
			Name:   "pick",
			Desc:   "(I)I",
			Code: &Code{
				MaxStack:  1,
				MaxLocals: 1,
				Instructions: []Instruction{
					{Opcode: 0x1A}, // iload_0
					{Opcode: OpIfeq, Imm: JumpImm{Target: target}},
					{Opcode: 0x04}, // iconst_1
					{Opcode: OpIreturn},
					{Label: target, Opcode: 0x03}, // iconst_0
					{Opcode: OpIreturn},
				},
			},
		}},
	}

	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	code := back.Methods[0].Code
	if code == nil {
		t.Fatal("code lost in round trip")
	}
	if code.MaxStack != 1 || code.MaxLocals != 1 {
		t.Errorf("maxs: got %d/%d", code.MaxStack, code.MaxLocals)
	}
	wantOps := []byte{0x1A, OpIfeq, 0x04, OpIreturn, 0x03, OpIreturn}
	if len(code.Instructions) != len(wantOps) {
		t.Fatalf("instructions: got %d, want %d", len(code.Instructions), len(wantOps))
	}
	for i, ins := range code.Instructions {
		if ins.Opcode != wantOps[i] {
			t.Errorf("instruction %d: got %s, want %s", i, OpName(ins.Opcode), OpName(wantOps[i]))
		}
	}
	jump, ok := code.Instructions[1].Imm.(JumpImm)
	if !ok {
		t.Fatalf("ifeq immediate: got %T", code.Instructions[1].Imm)
	}
	if jump.Target != code.Instructions[4].Label {
		t.Errorf("ifeq target does not point at iconst_0")
	}

	// A second round trip of unmodified instructions is byte-identical.
	again, err := WriteClass(back)
	if err != nil {
		t.Fatalf("second WriteClass failed: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Errorf("second round trip changed bytes")
	}
}

func TestOnlyReferencedPositionsCarryLabels(t *testing.T) {
	target := &Label{}
	c := &ClassFile{
		Version:   Version{Major: 61},
		Access:    AccPublic | AccSuper,
		Name:      "Sparse",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Access: AccPublic | AccStatic,
			Name:   "pick",
			Desc:   "(I)I",
			Code: &Code{
				MaxStack:  1,
				MaxLocals: 1,
				Instructions: []Instruction{
					{Opcode: 0x1A}, // iload_0
					{Opcode: OpIfeq, Imm: JumpImm{Target: target}},
					{Opcode: 0x04}, // iconst_1
					{Opcode: OpIreturn},
					{Label: target, Opcode: 0x03}, // iconst_0
					{Opcode: OpIreturn},
				},
			},
		}},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	ins := back.Methods[0].Code.Instructions
	for _, i := range []int{0, 1, 2, 3, 5} {
		if ins[i].Label != nil {
			t.Errorf("instruction %d carries a label no one references", i)
		}
	}
	if ins[4].Label == nil {
		t.Fatal("branch target lost its label")
	}
	if ins[1].Imm.(JumpImm).Target != ins[4].Label {
		t.Errorf("ifeq target and labeled instruction disagree")
	}
	if back.Methods[0].Code.End == nil {
		t.Error("end label missing")
	}
}

func TestRoundTripMethodReferences(t *testing.T) {
	c := &ClassFile{
		Version:   Version{Major: 61},
		Access:    AccPublic | AccSuper,
		Name:      "Calls",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Access: AccPublic,
			Name:   "<init>",
			Desc:   "()V",
			Code: &Code{
				MaxStack:  2,
				MaxLocals: 1,
				Instructions: []Instruction{
					{Opcode: 0x2A}, // aload_0
					{Opcode: OpInvokespecial, Imm: MethodImm{Owner: "java/lang/Object", Name: "<init>", Desc: "()V"}},
					{Opcode: OpGetstatic, Imm: FieldImm{Owner: "java/lang/System", Name: "out", Desc: "Ljava/io/PrintStream;"}},
					{Opcode: OpLdc, Imm: LdcImm{Const: "hello"}},
					{Opcode: OpInvokevirtual, Imm: MethodImm{Owner: "java/io/PrintStream", Name: "println", Desc: "(Ljava/lang/String;)V"}},
					{Opcode: OpReturn},
				},
			},
		}},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	ins := back.Methods[0].Code.Instructions
	call, ok := ins[1].Imm.(MethodImm)
	if !ok || call.Owner != "java/lang/Object" || call.Name != "<init>" || call.Desc != "()V" {
		t.Errorf("invokespecial: got %+v", ins[1].Imm)
	}
	field, ok := ins[2].Imm.(FieldImm)
	if !ok || field.Owner != "java/lang/System" || field.Name != "out" {
		t.Errorf("getstatic: got %+v", ins[2].Imm)
	}
	ldc, ok := ins[3].Imm.(LdcImm)
	if !ok {
		t.Fatalf("ldc immediate: got %T", ins[3].Imm)
	}
	if s, ok := ldc.Const.(string); !ok || s != "hello" {
		t.Errorf("ldc constant: got %v", ldc.Const)
	}
}

func TestRoundTripDynamicConstants(t *testing.T) {
	bootstrap := MethodHandle{
		Kind:  RefInvokeStatic,
		Owner: "java/lang/invoke/ConstantBootstraps",
		Name:  "getStaticFinal",
		Desc:  "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/Class;)Ljava/lang/Object;",
	}
	c := &ClassFile{
		Version:          Version{Major: 61},
		Access:           AccPublic | AccSuper,
		Name:             "Condy",
		SuperName:        "java/lang/Object",
		BootstrapMethods: []BootstrapMethod{{Handle: bootstrap}},
		Methods: []Method{
			{
				Access: AccPublic | AccStatic,
				Name:   "seed",
				Desc:   "()J",
				Code: &Code{
					MaxStack: 2,
					Instructions: []Instruction{
						{Opcode: OpLdc2W, Imm: LdcImm{Const: DynamicConst{BootstrapIndex: 0, Name: "SEED", Desc: "J"}}},
						{Opcode: 0xAD}, // lreturn
					},
				},
			},
			{
				Access: AccPublic | AccStatic,
				Name:   "size",
				Desc:   "()I",
				Code: &Code{
					MaxStack: 1,
					Instructions: []Instruction{
						{Opcode: OpLdc, Imm: LdcImm{Const: DynamicConst{BootstrapIndex: 0, Name: "SIZE", Desc: "I"}}},
						{Opcode: OpIreturn},
					},
				},
			},
		},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}

	// A long-typed dynamic constant keeps the wide form.
	wide := back.Methods[0].Code.Instructions[0]
	if wide.Opcode != OpLdc2W {
		t.Errorf("long dynamic constant: got %s, want ldc2_w", OpName(wide.Opcode))
	}
	dc, ok := wide.Imm.(LdcImm).Const.(DynamicConst)
	if !ok || dc.Name != "SEED" || dc.Desc != "J" || dc.BootstrapIndex != 0 {
		t.Errorf("long dynamic constant: got %+v", wide.Imm)
	}

	// An int-typed one stays narrow.
	narrow := back.Methods[1].Code.Instructions[0]
	if narrow.Opcode != OpLdc {
		t.Errorf("int dynamic constant: got %s, want ldc", OpName(narrow.Opcode))
	}
	dc, ok = narrow.Imm.(LdcImm).Const.(DynamicConst)
	if !ok || dc.Name != "SIZE" || dc.Desc != "I" {
		t.Errorf("int dynamic constant: got %+v", narrow.Imm)
	}
}

func TestGotoWideningRoundTrip(t *testing.T) {
	target := &Label{}
	instructions := []Instruction{
		{Opcode: OpGoto, Imm: JumpImm{Target: target}},
	}
	for i := 0; i < 0x9000; i++ {
		instructions = append(instructions, Instruction{Opcode: OpNop})
	}
	instructions = append(instructions, Instruction{Label: target, Opcode: OpReturn})

	c := &ClassFile{
		Version:   Version{Major: 52},
		Access:    AccPublic | AccSuper,
		Name:      "Far",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Access: AccPublic | AccStatic,
			Name:   "leap",
			Desc:   "()V",
			Code:   &Code{MaxStack: 0, MaxLocals: 0, Instructions: instructions},
		}},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	got := back.Methods[0].Code.Instructions
	if got[0].Opcode != OpGotoW {
		t.Errorf("far goto: got %s, want goto_w", OpName(got[0].Opcode))
	}
	jump := got[0].Imm.(JumpImm)
	if jump.Target != got[len(got)-1].Label {
		t.Errorf("widened goto lost its target")
	}
}

func TestConditionalBranchOverflow(t *testing.T) {
	target := &Label{}
	instructions := []Instruction{
		{Opcode: OpIfeq, Imm: JumpImm{Target: target}},
	}
	for i := 0; i < 0x9000; i++ {
		instructions = append(instructions, Instruction{Opcode: OpNop})
	}
	instructions = append(instructions, Instruction{Label: target, Opcode: OpReturn})

	c := &ClassFile{
		Version:   Version{Major: 52},
		Access:    AccPublic | AccSuper,
		Name:      "TooFar",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Access: AccPublic | AccStatic,
			Name:   "leap",
			Desc:   "(I)V",
			Code:   &Code{MaxStack: 1, MaxLocals: 1, Instructions: instructions},
		}},
	}
	if _, err := WriteClass(c); err == nil {
		t.Fatal("expected overflow error for unreachable conditional branch target")
	}
}

func TestReadClassRejectsBadInput(t *testing.T) {
	golden := goldenClass()

	bad := append([]byte(nil), golden...)
	bad[0] = 0xCB
	if _, err := ReadClass(bad); err == nil {
		t.Error("expected error for bad magic")
	}

	old := append([]byte(nil), golden...)
	old[6], old[7] = 0x00, 0x2C // major 44
	if _, err := ReadClass(old); err == nil {
		t.Error("expected error for unsupported version")
	}

	if _, err := ReadClass(append(append([]byte(nil), golden...), 0x00)); err == nil {
		t.Error("expected error for trailing bytes")
	}
}

func TestReadClassTruncatedAtEveryPrefix(t *testing.T) {
	golden := goldenClass()
	for i := 0; i < len(golden); i++ {
		if _, err := ReadClass(golden[:i]); err == nil {
			t.Fatalf("prefix of %d bytes decoded without error", i)
		}
	}
}

func TestUnknownAttributePassthrough(t *testing.T) {
	c := goldenTree()
	c.Attrs = append(c.Attrs, Attribute{Name: "org.example.Custom", Data: []byte{1, 2, 3}})

	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	if len(back.Attrs) != 1 {
		t.Fatalf("attrs: got %d, want 1", len(back.Attrs))
	}
	if back.Attrs[0].Name != "org.example.Custom" || !bytes.Equal(back.Attrs[0].Data, []byte{1, 2, 3}) {
		t.Errorf("attribute changed: %+v", back.Attrs[0])
	}
}

func TestRoundTripLongConstantAndMetadata(t *testing.T) {
	c := &ClassFile{
		Version:    Version{Major: 65},
		Access:     AccPublic | AccSuper,
		Name:       "Meta",
		SuperName:  "java/lang/Object",
		Interfaces: []string{"java/io/Serializable"},
		SourceFile: "Meta.java",
		Signature:  "Ljava/lang/Object;Ljava/io/Serializable;",
		Deprecated: true,
		Fields: []Field{
			{Access: AccStatic | AccFinal, Name: "BIG", Desc: "J", ConstantValue: int64(1) << 40},
			{Access: AccStatic | AccFinal, Name: "PI", Desc: "D", ConstantValue: 3.25},
		},
		VisibleAnnotations: []Annotation{{
			Type: "Lorg/example/Marker;",
			Elements: []ElementValuePair{
				{Name: "value", Value: ElementValue{Tag: 's', Const: "tag"}},
				{Name: "count", Value: ElementValue{Tag: 'I', Const: int32(7)}},
			},
		}},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	if v, ok := back.Fields[0].ConstantValue.(int64); !ok || v != int64(1)<<40 {
		t.Errorf("long constant: got %v", back.Fields[0].ConstantValue)
	}
	if v, ok := back.Fields[1].ConstantValue.(float64); !ok || v != 3.25 {
		t.Errorf("double constant: got %v", back.Fields[1].ConstantValue)
	}
	if back.SourceFile != "Meta.java" || back.Signature != c.Signature || !back.Deprecated {
		t.Errorf("metadata lost: %+v", back)
	}
	if len(back.Interfaces) != 1 || back.Interfaces[0] != "java/io/Serializable" {
		t.Errorf("interfaces: got %v", back.Interfaces)
	}
	if len(back.VisibleAnnotations) != 1 {
		t.Fatalf("annotations: got %d", len(back.VisibleAnnotations))
	}
	a := back.VisibleAnnotations[0]
	if a.Type != "Lorg/example/Marker;" || len(a.Elements) != 2 {
		t.Fatalf("annotation: got %+v", a)
	}
	if a.Elements[0].Value.Const != "tag" {
		t.Errorf("element 0: got %v", a.Elements[0].Value.Const)
	}
	if a.Elements[1].Value.Const != int32(7) {
		t.Errorf("element 1: got %v", a.Elements[1].Value.Const)
	}
}

func TestRoundTripTryCatchAndDebug(t *testing.T) {
	start := &Label{}
	handler := &Label{}
	end := &Label{}
	c := &ClassFile{
		Version:   Version{Major: 61},
		Access:    AccPublic | AccSuper,
		Name:      "Guarded",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Access: AccPublic | AccStatic,
			Name:   "guard",
			Desc:   "()V",
			Code: &Code{
				MaxStack:  1,
				MaxLocals: 1,
				Instructions: []Instruction{
					{Label: start, Opcode: OpNop},
					{Opcode: OpReturn},
					{Label: handler, Opcode: 0x57}, // pop
					{Opcode: OpReturn},
				},
				End: end,
				TryCatch: []TryCatchBlock{{
					Range:   LabelRange{Start: start, End: handler},
					Handler: handler,
					Type:    "java/lang/Exception",
				}},
				LineNumbers: []LineNumber{{Start: start, Line: 10}},
				LocalVars: []LocalVariable{{
					Name:  "x",
					Desc:  "I",
					Range: LabelRange{Start: start, End: end},
					Index: 0,
				}},
			},
		}},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	code := back.Methods[0].Code
	if len(code.TryCatch) != 1 {
		t.Fatalf("try/catch: got %d entries", len(code.TryCatch))
	}
	tc := code.TryCatch[0]
	if tc.Type != "java/lang/Exception" {
		t.Errorf("catch type: got %q", tc.Type)
	}
	if tc.Range.Start != code.Instructions[0].Label {
		t.Errorf("range start is not the first instruction")
	}
	if tc.Handler != code.Instructions[2].Label {
		t.Errorf("handler is not the pop instruction")
	}
	if len(code.LineNumbers) != 1 || code.LineNumbers[0].Line != 10 {
		t.Errorf("line numbers: got %+v", code.LineNumbers)
	}
	if len(code.LocalVars) != 1 || code.LocalVars[0].Name != "x" {
		t.Fatalf("local vars: got %+v", code.LocalVars)
	}
	if code.LocalVars[0].Range.End != code.End {
		t.Errorf("local var range end is not the end label")
	}
}

func TestRoundTripSwitches(t *testing.T) {
	one := &Label{}
	two := &Label{}
	def := &Label{}
	c := &ClassFile{
		Version:   Version{Major: 52},
		Access:    AccPublic | AccSuper,
		Name:      "Switchy",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Access: AccPublic | AccStatic,
			Name:   "choose",
			Desc:   "(I)I",
			Code: &Code{
				MaxStack:  1,
				MaxLocals: 1,
				Instructions: []Instruction{
					{Opcode: 0x1A}, // iload_0
					{Opcode: OpTableswitch, Imm: TableSwitchImm{
						Default: def, Low: 1, High: 2, Targets: []*Label{one, two},
					}},
					{Label: one, Opcode: 0x04, Imm: nil}, // iconst_1
					{Opcode: OpIreturn},
					{Label: two, Opcode: 0x05}, // iconst_2
					{Opcode: OpIreturn},
					{Label: def, Opcode: 0x1A}, // iload_0
					{Opcode: OpLookupswitch, Imm: LookupSwitchImm{
						Default: one, Keys: []int32{-10, 500}, Targets: []*Label{one, two},
					}},
					{Opcode: 0x03}, // iconst_0
					{Opcode: OpIreturn},
				},
			},
		}},
	}
	data, err := WriteClass(c)
	if err != nil {
		t.Fatalf("WriteClass failed: %v", err)
	}
	back, err := ReadClass(data)
	if err != nil {
		t.Fatalf("ReadClass failed: %v", err)
	}
	ins := back.Methods[0].Code.Instructions
	ts, ok := ins[1].Imm.(TableSwitchImm)
	if !ok {
		t.Fatalf("tableswitch immediate: got %T", ins[1].Imm)
	}
	if ts.Low != 1 || ts.High != 2 || len(ts.Targets) != 2 {
		t.Errorf("tableswitch: got %+v", ts)
	}
	if ts.Targets[0] != ins[2].Label || ts.Targets[1] != ins[4].Label {
		t.Errorf("tableswitch targets misresolved")
	}
	ls, ok := ins[7].Imm.(LookupSwitchImm)
	if !ok {
		t.Fatalf("lookupswitch immediate: got %T", ins[7].Imm)
	}
	if len(ls.Keys) != 2 || ls.Keys[0] != -10 || ls.Keys[1] != 500 {
		t.Errorf("lookupswitch keys: got %v", ls.Keys)
	}
}
