package classfile

import (
	"strings"
	"testing"
)

func TestValidateCleanTree(t *testing.T) {
	if err := goldenTree().Validate(); err != nil {
		t.Fatalf("golden tree failed validation: %v", err)
	}
}

func TestValidateCollectsAllFindings(t *testing.T) {
	c := &ClassFile{
		Version:   Version{Major: 52},
		Access:    AccPublic,
		Name:      "bad.name",
		SuperName: "also.bad",
		Fields: []Field{{
			Name: "f", Desc: "Q", ConstantValue: int32(1),
		}},
		Methods: []Method{{
			Name: "m", Desc: "()X",
			Code: &Code{
				Instructions: []Instruction{
					{Opcode: OpGoto, Imm: JumpImm{Target: nil}},
					{Opcode: OpInvokedynamic, Imm: InvokeDynamicImm{BootstrapIndex: 3, Name: "run", Desc: "()V"}},
				},
			},
		}},
	}
	err := c.Validate()
	if err != nil {
		msg := err.Error()
		for _, want := range []string{
			"this_class",
			"super_class",
			"field f",
			"method m",
			"nil branch target",
			"bootstrap method 3",
		} {
			if !strings.Contains(msg, want) {
				t.Errorf("validation report missing %q:\n%s", want, msg)
			}
		}
		return
	}
	t.Fatal("expected validation errors")
}

func TestValidateConstantValueTypes(t *testing.T) {
	cases := []struct {
		desc  string
		value any
		ok    bool
	}{
		{"I", int32(1), true},
		{"Z", int32(1), true},
		{"J", int64(1), true},
		{"F", float32(1), true},
		{"D", float64(1), true},
		{"Ljava/lang/String;", "s", true},
		{"I", int64(1), false},
		{"J", int32(1), false},
		{"Ljava/lang/Object;", "s", false},
	}
	for _, tc := range cases {
		f := &Field{Name: "f", Desc: tc.desc, ConstantValue: tc.value}
		err := validateConstantValue(f)
		if tc.ok && err != nil {
			t.Errorf("%s = %T: unexpected error %v", tc.desc, tc.value, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s = %T: expected error", tc.desc, tc.value)
		}
	}
}

func TestValidateLookupSwitchKeys(t *testing.T) {
	l := &Label{}
	c := &ClassFile{
		Version:   Version{Major: 52},
		Name:      "Keys",
		SuperName: "java/lang/Object",
		Methods: []Method{{
			Name: "m", Desc: "(I)V",
			Code: &Code{
				Instructions: []Instruction{{
					Opcode: OpLookupswitch,
					Imm: LookupSwitchImm{
						Default: l,
						Keys:    []int32{5, 5},
						Targets: []*Label{l, l},
					},
				}},
			},
		}},
	}
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "strictly increasing") {
		t.Fatalf("expected unsorted-keys finding, got %v", err)
	}
}
