package classfile

import (
	"github.com/hashicorp/go-multierror"

	"github.com/wippyai/classfile-kit/errors"
)

// Validate checks a tree for problems that encoding alone would not
// catch: malformed names and descriptors, dangling bootstrap references,
// inconsistent switch operands. All findings are collected and returned
// together rather than stopping at the first.
//
// Validate does not verify bytecode semantics; the JVM verifier owns
// that. A tree that validates cleanly still encodes to whatever it says,
// valid or not.
func (c *ClassFile) Validate() error {
	var result *multierror.Error

	collect := func(err error, frames ...string) {
		if err != nil {
			result = multierror.Append(result, errors.In(err, frames...))
		}
	}

	if c.Version.Major < MinMajorVersion || c.Version.Major > MaxMajorVersion {
		collect(errors.Unsupported(errors.PhaseValidate,
			"class file major version "+itoa(int(c.Version.Major))))
	}

	_, err := NewClassName(c.Name)
	collect(err, "this_class")
	if c.SuperName != "" {
		_, err = NewClassName(c.SuperName)
		collect(err, "super_class")
	}
	for _, iface := range c.Interfaces {
		_, err = NewClassName(iface)
		collect(err, "interfaces")
	}
	if c.NestHost != "" {
		_, err = NewClassName(c.NestHost)
		collect(err, "NestHost")
	}
	for _, m := range c.NestMembers {
		_, err = NewClassName(m)
		collect(err, "NestMembers")
	}
	for _, s := range c.PermittedSubcls {
		_, err = NewClassName(s)
		collect(err, "PermittedSubclasses")
	}
	for _, ic := range c.InnerClasses {
		_, err = NewClassName(ic.Inner)
		collect(err, "InnerClasses")
		if ic.Outer != "" {
			_, err = NewClassName(ic.Outer)
			collect(err, "InnerClasses")
		}
	}

	for i := range c.Fields {
		f := &c.Fields[i]
		frame := "field " + f.Name
		_, err = NewMemberName(f.Name)
		collect(err, frame)
		_, err = NewFieldDescriptor(f.Desc)
		collect(err, frame)
		collect(validateConstantValue(f), frame)
	}

	for i := range c.Methods {
		m := &c.Methods[i]
		frame := "method " + m.Name
		_, err = NewMemberName(m.Name)
		collect(err, frame)
		_, err = NewMethodDescriptor(m.Desc)
		collect(err, frame)
		if m.Code != nil {
			collect(c.validateCode(m.Code), frame)
		}
	}

	for i := range c.RecordComponents {
		rc := &c.RecordComponents[i]
		frame := "record component " + rc.Name
		_, err = NewMemberName(rc.Name)
		collect(err, frame)
		_, err = NewFieldDescriptor(rc.Desc)
		collect(err, frame)
	}

	return result.ErrorOrNil()
}

// validateConstantValue checks that a field's initial value matches its
// descriptor's base type.
func validateConstantValue(f *Field) error {
	if f.ConstantValue == nil {
		return nil
	}
	ok := false
	switch f.ConstantValue.(type) {
	case int32:
		switch f.Desc {
		case "B", "C", "I", "S", "Z":
			ok = true
		}
	case float32:
		ok = f.Desc == "F"
	case int64:
		ok = f.Desc == "J"
	case float64:
		ok = f.Desc == "D"
	case string:
		ok = f.Desc == "Ljava/lang/String;"
	}
	if !ok {
		return errors.InvalidData(errors.PhaseValidate, nil,
			"constant of type %T does not match descriptor %s", f.ConstantValue, f.Desc)
	}
	return nil
}

func (c *ClassFile) validateCode(code *Code) error {
	var result *multierror.Error
	for i := range code.Instructions {
		ins := &code.Instructions[i]
		switch imm := ins.Imm.(type) {
		case JumpImm:
			if imm.Target == nil {
				result = multierror.Append(result, errors.InvalidData(errors.PhaseValidate, nil,
					"instruction %d (%s) has a nil branch target", i, OpName(ins.Opcode)))
			}
		case TableSwitchImm:
			if int64(len(imm.Targets)) != int64(imm.High)-int64(imm.Low)+1 {
				result = multierror.Append(result, errors.InvalidData(errors.PhaseValidate, nil,
					"instruction %d: tableswitch has %d targets for range [%d, %d]",
					i, len(imm.Targets), imm.Low, imm.High))
			}
		case LookupSwitchImm:
			if len(imm.Keys) != len(imm.Targets) {
				result = multierror.Append(result, errors.InvalidData(errors.PhaseValidate, nil,
					"instruction %d: lookupswitch has %d keys but %d targets",
					i, len(imm.Keys), len(imm.Targets)))
			}
			for j := 1; j < len(imm.Keys); j++ {
				if imm.Keys[j] <= imm.Keys[j-1] {
					result = multierror.Append(result, errors.InvalidData(errors.PhaseValidate, nil,
						"instruction %d: lookupswitch keys not strictly increasing at %d", i, j))
					break
				}
			}
		case InvokeDynamicImm:
			if int(imm.BootstrapIndex) >= len(c.BootstrapMethods) {
				result = multierror.Append(result, errors.InvalidReference(errors.PhaseValidate, nil,
					"instruction %d: bootstrap method %d out of range (%d entries)",
					i, imm.BootstrapIndex, len(c.BootstrapMethods)))
			}
		case TypeImm:
			if _, err := NewClassName(imm.Name); err != nil {
				result = multierror.Append(result, errors.In(err, "instruction "+itoa(i)))
			}
		}
	}
	for i, tc := range code.TryCatch {
		if tc.Range.Start == nil || tc.Range.End == nil || tc.Handler == nil {
			result = multierror.Append(result, errors.InvalidData(errors.PhaseValidate, nil,
				"exception table entry %d has a nil label", i))
		}
		if tc.Type != "" {
			if _, err := NewClassName(tc.Type); err != nil {
				result = multierror.Append(result, errors.In(err, "exception table entry "+itoa(i)))
			}
		}
	}
	return result.ErrorOrNil()
}
