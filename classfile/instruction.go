package classfile

import (
	"github.com/wippyai/classfile-kit/classfile/internal/binary"
	"github.com/wippyai/classfile-kit/errors"
)

// Instruction is one decoded bytecode instruction. Label is non-nil only
// when something references the position: a branch, a switch arm, an
// exception range, or a debug table entry. Imm holds the typed immediate
// for the opcode, or nil for no-operand instructions. Pool indices never
// appear here: every constant reference is resolved to values, every
// branch target to a Label.
type Instruction struct {
	Label  *Label
	Opcode byte
	Imm    any
}

// VarImm is the local-variable index of a load, store, or ret
// instruction. Wide records that the wide prefixed form was used.
type VarImm struct {
	Index uint16
	Wide  bool
}

// IincImm is the operand pair of iinc.
type IincImm struct {
	Index uint16
	Delta int16
	Wide  bool
}

// IntImm is the operand of bipush or sipush.
type IntImm struct {
	Value int32
}

// LdcImm is the loadable constant of ldc, ldc_w, or ldc2_w.
type LdcImm struct {
	Const any
}

// TypeImm is the class operand of new, anewarray, checkcast, or
// instanceof.
type TypeImm struct {
	Name string
}

// NewArrayImm is the primitive element type code of newarray.
type NewArrayImm struct {
	Atype byte
}

// FieldImm is the field reference of getfield/putfield/getstatic/
// putstatic.
type FieldImm struct {
	Owner string
	Name  string
	Desc  string
}

// MethodImm is the method reference of invokevirtual, invokespecial, or
// invokestatic. Interface records whether the reference used the
// interface-methodref pool form.
type MethodImm struct {
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// InvokeInterfaceImm is the operand of invokeinterface. Count is the
// historical argument-slot count byte, preserved verbatim.
type InvokeInterfaceImm struct {
	Owner string
	Name  string
	Desc  string
	Count byte
}

// InvokeDynamicImm is the call site of invokedynamic. BootstrapIndex
// refers into the class's BootstrapMethods table.
type InvokeDynamicImm struct {
	BootstrapIndex uint16
	Name           string
	Desc           string
}

// JumpImm is the target of any branch instruction, including the _w
// forms.
type JumpImm struct {
	Target *Label
}

// TableSwitchImm is the operand block of tableswitch. Targets has
// High-Low+1 entries.
type TableSwitchImm struct {
	Default *Label
	Low     int32
	High    int32
	Targets []*Label
}

// LookupSwitchImm is the operand block of lookupswitch. Keys and Targets
// are parallel and sorted by key in well-formed input.
type LookupSwitchImm struct {
	Default *Label
	Keys    []int32
	Targets []*Label
}

// MultiANewArrayImm is the operand pair of multianewarray.
type MultiANewArrayImm struct {
	Name string
	Dims byte
}

// codeReader decodes one Code attribute's bytecode array.
type codeReader struct {
	r      *binary.Reader
	pool   *ConstantPool
	labels *labelReader
}

// decodeInstructions parses code, resolving every pool reference through
// pool and every branch offset through a fresh label table. Labels are
// minted only for referenced offsets; the caller attaches them to
// instructions once the exception and debug tables have minted theirs,
// via the returned per-instruction offsets.
func decodeInstructions(code []byte, pool *ConstantPool) ([]Instruction, []int, *labelReader, error) {
	labels := newLabelReader(len(code))
	cr := &codeReader{r: binary.NewReader(code), pool: pool, labels: labels}

	var out []Instruction
	var offsets []int
	bounds := make(map[int]bool)
	for cr.r.Remaining() > 0 {
		at := cr.r.Position()
		bounds[at] = true
		ins, err := cr.next(at)
		if err != nil {
			return nil, nil, nil, errors.In(err, "bytecode offset "+itoa(at))
		}
		out = append(out, ins)
		offsets = append(offsets, at)
	}
	if err := labels.seal(bounds); err != nil {
		return nil, nil, nil, err
	}
	return out, offsets, labels, nil
}

func (cr *codeReader) next(at int) (Instruction, error) {
	op, err := cr.r.ReadU8()
	if err != nil {
		return Instruction{}, err
	}
	ins := Instruction{Opcode: op}

	switch op {
	case OpBipush:
		v, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		ins.Imm = IntImm{Value: int32(int8(v))}

	case OpSipush:
		v, err := cr.r.ReadS16()
		if err != nil {
			return ins, err
		}
		ins.Imm = IntImm{Value: int32(v)}

	case OpLdc:
		idx, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		return cr.ldc(ins, uint16(idx), false)

	case OpLdcW:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		return cr.ldc(ins, idx, false)

	case OpLdc2W:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		return cr.ldc(ins, idx, true)

	case OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet:
		idx, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		ins.Imm = VarImm{Index: uint16(idx)}

	case OpIinc:
		idx, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		delta, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		ins.Imm = IincImm{Index: uint16(idx), Delta: int16(int8(delta))}

	case OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpIfAcmpeq, OpIfAcmpne, OpGoto, OpJsr, OpIfnull, OpIfnonnull:
		off, err := cr.r.ReadS16()
		if err != nil {
			return ins, err
		}
		target, err := cr.labels.labelAt(at + int(off))
		if err != nil {
			return ins, err
		}
		ins.Imm = JumpImm{Target: target}

	case OpGotoW, OpJsrW:
		off, err := cr.r.ReadS32()
		if err != nil {
			return ins, err
		}
		target, err := cr.labels.labelAt(at + int(off))
		if err != nil {
			return ins, err
		}
		ins.Imm = JumpImm{Target: target}

	case OpTableswitch:
		return cr.tableswitch(ins, at)

	case OpLookupswitch:
		return cr.lookupswitch(ins, at)

	case OpGetstatic, OpPutstatic, OpGetfield, OpPutfield:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		owner, name, desc, err := cr.pool.FieldRef(idx)
		if err != nil {
			return ins, err
		}
		ins.Imm = FieldImm{Owner: owner, Name: name, Desc: desc}

	case OpInvokevirtual, OpInvokespecial, OpInvokestatic:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		owner, name, desc, iface, err := cr.pool.MethodRef(idx)
		if err != nil {
			return ins, err
		}
		ins.Imm = MethodImm{Owner: owner, Name: name, Desc: desc, Interface: iface}

	case OpInvokeinterface:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		count, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		if _, err := cr.r.ReadU8(); err != nil { // reserved zero byte
			return ins, err
		}
		owner, name, desc, _, err := cr.pool.MethodRef(idx)
		if err != nil {
			return ins, err
		}
		ins.Imm = InvokeInterfaceImm{Owner: owner, Name: name, Desc: desc, Count: count}

	case OpInvokedynamic:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		if _, err := cr.r.ReadU16(); err != nil { // reserved zero bytes
			return ins, err
		}
		e, err := cr.pool.typedEntry(idx, TagInvokeDynamic)
		if err != nil {
			return ins, err
		}
		name, desc, err := cr.pool.NameAndType(e.idx2)
		if err != nil {
			return ins, err
		}
		ins.Imm = InvokeDynamicImm{BootstrapIndex: e.idx1, Name: name, Desc: desc}

	case OpNew, OpAnewarray, OpCheckcast, OpInstanceof:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		name, err := cr.pool.ClassName(idx)
		if err != nil {
			return ins, err
		}
		ins.Imm = TypeImm{Name: name}

	case OpNewarray:
		atype, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		ins.Imm = NewArrayImm{Atype: atype}

	case OpMultianewarray:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		dims, err := cr.r.ReadU8()
		if err != nil {
			return ins, err
		}
		name, err := cr.pool.ClassName(idx)
		if err != nil {
			return ins, err
		}
		ins.Imm = MultiANewArrayImm{Name: name, Dims: dims}

	case OpWide:
		return cr.wide(ins)

	default:
		if opNames[op] == "" {
			return ins, errors.UnknownTag(errors.PhaseDecode, "opcode", op)
		}
		// No-operand instruction.
	}
	return ins, nil
}

func (cr *codeReader) ldc(ins Instruction, idx uint16, wide bool) (Instruction, error) {
	v, err := cr.pool.Constant(idx)
	if err != nil {
		return ins, err
	}
	if wide != wideConstant(v) {
		return ins, errors.InvalidReference(errors.PhaseDecode, nil,
			"constant %T has the wrong width for %s", v, OpName(ins.Opcode))
	}
	ins.Imm = LdcImm{Const: v}
	return ins, nil
}

func (cr *codeReader) wide(ins Instruction) (Instruction, error) {
	sub, err := cr.r.ReadU8()
	if err != nil {
		return ins, err
	}
	ins.Opcode = sub
	switch sub {
	case OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		ins.Imm = VarImm{Index: idx, Wide: true}
	case OpIinc:
		idx, err := cr.r.ReadU16()
		if err != nil {
			return ins, err
		}
		delta, err := cr.r.ReadS16()
		if err != nil {
			return ins, err
		}
		ins.Imm = IincImm{Index: idx, Delta: delta, Wide: true}
	default:
		return ins, errors.UnknownTag(errors.PhaseDecode, "wide opcode", sub)
	}
	return ins, nil
}

func (cr *codeReader) tableswitch(ins Instruction, at int) (Instruction, error) {
	if err := cr.skipSwitchPadding(at); err != nil {
		return ins, err
	}
	def, err := cr.switchTarget(at)
	if err != nil {
		return ins, err
	}
	low, err := cr.r.ReadS32()
	if err != nil {
		return ins, err
	}
	high, err := cr.r.ReadS32()
	if err != nil {
		return ins, err
	}
	if high < low {
		return ins, errors.InvalidData(errors.PhaseDecode, nil,
			"tableswitch high %d below low %d", high, low)
	}
	n := int64(high) - int64(low) + 1
	if n > int64(cr.r.Remaining())/4 {
		return ins, errors.InvalidData(errors.PhaseDecode, nil,
			"tableswitch entry count %d exceeds remaining code", n)
	}
	targets := make([]*Label, n)
	for i := range targets {
		if targets[i], err = cr.switchTarget(at); err != nil {
			return ins, err
		}
	}
	ins.Imm = TableSwitchImm{Default: def, Low: low, High: high, Targets: targets}
	return ins, nil
}

func (cr *codeReader) lookupswitch(ins Instruction, at int) (Instruction, error) {
	if err := cr.skipSwitchPadding(at); err != nil {
		return ins, err
	}
	def, err := cr.switchTarget(at)
	if err != nil {
		return ins, err
	}
	npairs, err := cr.r.ReadS32()
	if err != nil {
		return ins, err
	}
	if npairs < 0 || int64(npairs) > int64(cr.r.Remaining())/8 {
		return ins, errors.InvalidData(errors.PhaseDecode, nil,
			"lookupswitch pair count %d exceeds remaining code", npairs)
	}
	keys := make([]int32, npairs)
	targets := make([]*Label, npairs)
	for i := range keys {
		if keys[i], err = cr.r.ReadS32(); err != nil {
			return ins, err
		}
		if targets[i], err = cr.switchTarget(at); err != nil {
			return ins, err
		}
	}
	ins.Imm = LookupSwitchImm{Default: def, Keys: keys, Targets: targets}
	return ins, nil
}

// skipSwitchPadding consumes the 0-3 alignment bytes after a switch
// opcode so the following operands start at a 4-byte boundary.
func (cr *codeReader) skipSwitchPadding(at int) error {
	pad := 3 - at%4
	return cr.r.Skip(pad)
}

func (cr *codeReader) switchTarget(at int) (*Label, error) {
	off, err := cr.r.ReadS32()
	if err != nil {
		return nil, err
	}
	return cr.labels.labelAt(at + int(off))
}
