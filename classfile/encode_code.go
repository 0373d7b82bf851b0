package classfile

import (
	"go.uber.org/zap"

	"github.com/wippyai/classfile-kit/classfile/internal/binary"
	"github.com/wippyai/classfile-kit/errors"
)

// maxCodeLen is the JVM limit on one method body; offsets in the
// exception, line number, and local variable tables are u16.
const maxCodeLen = 0xFFFF

// branchFixup is one branch operand awaiting its resolved offset.
type branchFixup struct {
	pos    int  // operand position in the code buffer
	insOff int  // offset of the owning instruction
	ins    int  // index into Instructions, for widening
	op     byte // owning opcode
	target *Label
	wide   bool // 4-byte operand
}

// code serializes one Code attribute payload. Branch operands are laid
// out optimistically with 2-byte offsets; when a goto or jsr turns out to
// span further than an s16 reaches, the instruction is widened to its _w
// form and the whole body is laid out again, since every later offset
// shifts. Conditional branches have no wide form and overflow instead.
func (e *encoder) code(c *Code) ([]byte, error) {
	lw := newLabelWriter()
	widened := make(map[int]bool)

	var cw *binary.Writer
	for {
		var fixups []branchFixup
		var err error
		cw, fixups, err = e.layoutCode(c, lw, widened)
		if err != nil {
			return nil, err
		}
		grew, err := resolveBranches(cw, fixups, lw, widened)
		if err != nil {
			return nil, err
		}
		if !grew {
			break
		}
		lw.nextAttempt()
		Logger().Debug("branch widened, repeating body layout",
			zap.Int("attempt", lw.attempt))
	}
	code := cw.Bytes()
	if len(code) > maxCodeLen {
		return nil, errors.Overflow(errors.PhaseEncode, "code_length", len(code))
	}

	w := binary.NewWriter()
	w.U16(c.MaxStack)
	w.U16(c.MaxLocals)
	w.U32(uint32(len(code)))
	w.WriteBytes(code)

	n, err := u16Count(len(c.TryCatch), "exception_table_length")
	if err != nil {
		return nil, err
	}
	w.U16(n)
	for _, tc := range c.TryCatch {
		start, err := lw.resolve(tc.Range.Start)
		if err != nil {
			return nil, err
		}
		end, err := lw.resolve(tc.Range.End)
		if err != nil {
			return nil, err
		}
		handler, err := lw.resolve(tc.Handler)
		if err != nil {
			return nil, err
		}
		w.U16(uint16(start))
		w.U16(uint16(end))
		w.U16(uint16(handler))
		if tc.Type == "" {
			w.U16(0)
		} else {
			w.U16(e.pool.Class(tc.Type))
		}
	}

	attrs, err := e.codeAttrs(c, lw)
	if err != nil {
		return nil, err
	}
	if err := e.writeAttrs(w, attrs); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (e *encoder) codeAttrs(c *Code, lw *labelWriter) ([]rawAttr, error) {
	var attrs []rawAttr
	if len(c.LineNumbers) > 0 {
		n, err := u16Count(len(c.LineNumbers), "line_number_table_length")
		if err != nil {
			return nil, err
		}
		w := binary.NewWriter()
		w.U16(n)
		for _, ln := range c.LineNumbers {
			start, err := lw.resolve(ln.Start)
			if err != nil {
				return nil, err
			}
			w.U16(uint16(start))
			w.U16(ln.Line)
		}
		attrs = append(attrs, rawAttr{attrLineNumberTable, w.Bytes()})
	}
	for _, table := range []struct {
		name string
		vars []LocalVariable
	}{
		{attrLocalVariableTable, c.LocalVars},
		{attrLocalVariableTypeTable, c.LocalTypes},
	} {
		if len(table.vars) == 0 {
			continue
		}
		n, err := u16Count(len(table.vars), "local_variable_table_length")
		if err != nil {
			return nil, err
		}
		w := binary.NewWriter()
		w.U16(n)
		for _, lv := range table.vars {
			start, err := lw.resolve(lv.Range.Start)
			if err != nil {
				return nil, err
			}
			end, err := lw.resolve(lv.Range.End)
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, errors.InvalidData(errors.PhaseEncode, nil,
					"local variable %s range ends before it starts", lv.Name)
			}
			w.U16(uint16(start))
			w.U16(uint16(end - start))
			w.U16(e.pool.Utf8(lv.Name))
			w.U16(e.pool.Utf8(lv.Desc))
			w.U16(lv.Index)
		}
		attrs = append(attrs, rawAttr{table.name, w.Bytes()})
	}
	if len(c.StackMap) > 0 {
		attrs = append(attrs, rawAttr{attrStackMapTable, c.StackMap})
	}
	for _, a := range c.Attrs {
		attrs = append(attrs, rawAttr{a.Name, a.Data})
	}
	return attrs, nil
}

// layoutCode emits the bytecode array once, defining every instruction
// label and leaving branch operands as zero-filled fixups.
func (e *encoder) layoutCode(c *Code, lw *labelWriter, widened map[int]bool) (*binary.Writer, []branchFixup, error) {
	w := binary.NewWriter()
	var fixups []branchFixup

	for i := range c.Instructions {
		ins := &c.Instructions[i]
		at := w.Len()
		if ins.Label != nil {
			lw.define(ins.Label, at)
		}
		fx, err := e.instruction(w, ins, i, at, widened)
		if err != nil {
			return nil, nil, errors.In(err, "instruction "+itoa(i)+" ("+OpName(ins.Opcode)+")")
		}
		fixups = append(fixups, fx...)
	}
	if c.End != nil {
		lw.define(c.End, w.Len())
	}
	return w, fixups, nil
}

// resolveBranches patches branch operands. It reports whether any branch
// was widened, which requires a fresh layout.
func resolveBranches(w *binary.Writer, fixups []branchFixup, lw *labelWriter, widened map[int]bool) (bool, error) {
	grew := false
	for _, fx := range fixups {
		target, err := lw.resolve(fx.target)
		if err != nil {
			return false, err
		}
		delta := target - fx.insOff
		if fx.wide {
			w.PatchU32(fx.pos, uint32(int32(delta)))
			continue
		}
		if delta >= -0x8000 && delta <= 0x7FFF {
			w.PatchU16(fx.pos, uint16(int16(delta)))
			continue
		}
		// goto and jsr have wide forms; conditional branches do not.
		if fx.op == OpGoto || fx.op == OpJsr {
			widened[fx.ins] = true
			grew = true
			continue
		}
		return false, errors.Overflow(errors.PhaseEncode, "branch offset", delta)
	}
	return grew, nil
}

func (e *encoder) instruction(w *binary.Writer, ins *Instruction, idx, at int, widened map[int]bool) ([]branchFixup, error) {
	switch imm := ins.Imm.(type) {
	case nil:
		if opNames[ins.Opcode] == "" {
			return nil, errors.UnknownTag(errors.PhaseEncode, "opcode", ins.Opcode)
		}
		w.U8(ins.Opcode)

	case IntImm:
		w.U8(ins.Opcode)
		switch ins.Opcode {
		case OpBipush:
			if imm.Value < -0x80 || imm.Value > 0x7F {
				return nil, errors.Overflow(errors.PhaseEncode, "bipush operand", imm.Value)
			}
			w.U8(byte(int8(imm.Value)))
		case OpSipush:
			if imm.Value < -0x8000 || imm.Value > 0x7FFF {
				return nil, errors.Overflow(errors.PhaseEncode, "sipush operand", imm.Value)
			}
			w.S16(int16(imm.Value))
		default:
			return nil, errors.InvalidData(errors.PhaseEncode, nil,
				"integer immediate on %s", OpName(ins.Opcode))
		}

	case VarImm:
		if imm.Wide || imm.Index > 0xFF {
			w.U8(OpWide)
			w.U8(ins.Opcode)
			w.U16(imm.Index)
		} else {
			w.U8(ins.Opcode)
			w.U8(byte(imm.Index))
		}

	case IincImm:
		if imm.Wide || imm.Index > 0xFF || imm.Delta < -0x80 || imm.Delta > 0x7F {
			w.U8(OpWide)
			w.U8(OpIinc)
			w.U16(imm.Index)
			w.S16(imm.Delta)
		} else {
			w.U8(OpIinc)
			w.U8(byte(imm.Index))
			w.U8(byte(int8(imm.Delta)))
		}

	case LdcImm:
		cidx := e.pool.Constant(imm.Const)
		if wideConstant(imm.Const) {
			w.U8(OpLdc2W)
			w.U16(cidx)
		} else if ins.Opcode == OpLdcW || cidx > 0xFF {
			w.U8(OpLdcW)
			w.U16(cidx)
		} else {
			w.U8(OpLdc)
			w.U8(byte(cidx))
		}

	case TypeImm:
		w.U8(ins.Opcode)
		w.U16(e.pool.Class(imm.Name))

	case NewArrayImm:
		w.U8(OpNewarray)
		w.U8(imm.Atype)

	case FieldImm:
		w.U8(ins.Opcode)
		w.U16(e.pool.FieldRef(imm.Owner, imm.Name, imm.Desc))

	case MethodImm:
		w.U8(ins.Opcode)
		w.U16(e.pool.MethodRef(imm.Owner, imm.Name, imm.Desc, imm.Interface))

	case InvokeInterfaceImm:
		w.U8(OpInvokeinterface)
		w.U16(e.pool.MethodRef(imm.Owner, imm.Name, imm.Desc, true))
		w.U8(imm.Count)
		w.U8(0)

	case InvokeDynamicImm:
		w.U8(OpInvokedynamic)
		w.U16(e.pool.InvokeDynamic(imm.BootstrapIndex, imm.Name, imm.Desc))
		w.U16(0)

	case JumpImm:
		op := ins.Opcode
		if widened[idx] {
			switch op {
			case OpGoto:
				op = OpGotoW
			case OpJsr:
				op = OpJsrW
			}
		}
		w.U8(op)
		if op == OpGotoW || op == OpJsrW {
			pos := w.Len()
			w.U32(0)
			return []branchFixup{{pos: pos, insOff: at, ins: idx, op: op, target: imm.Target, wide: true}}, nil
		}
		pos := w.Len()
		w.U16(0)
		return []branchFixup{{pos: pos, insOff: at, ins: idx, op: op, target: imm.Target}}, nil

	case TableSwitchImm:
		if int64(len(imm.Targets)) != int64(imm.High)-int64(imm.Low)+1 {
			return nil, errors.InvalidData(errors.PhaseEncode, nil,
				"tableswitch has %d targets for range [%d, %d]", len(imm.Targets), imm.Low, imm.High)
		}
		w.U8(OpTableswitch)
		for p := 3 - at%4; p > 0; p-- {
			w.U8(0)
		}
		var fixups []branchFixup
		fixups = append(fixups, branchFixup{pos: w.Len(), insOff: at, ins: idx, target: imm.Default, wide: true})
		w.U32(0)
		w.S32(imm.Low)
		w.S32(imm.High)
		for _, t := range imm.Targets {
			fixups = append(fixups, branchFixup{pos: w.Len(), insOff: at, ins: idx, target: t, wide: true})
			w.U32(0)
		}
		return fixups, nil

	case LookupSwitchImm:
		if len(imm.Keys) != len(imm.Targets) {
			return nil, errors.InvalidData(errors.PhaseEncode, nil,
				"lookupswitch has %d keys but %d targets", len(imm.Keys), len(imm.Targets))
		}
		w.U8(OpLookupswitch)
		for p := 3 - at%4; p > 0; p-- {
			w.U8(0)
		}
		var fixups []branchFixup
		fixups = append(fixups, branchFixup{pos: w.Len(), insOff: at, ins: idx, target: imm.Default, wide: true})
		w.U32(0)
		w.S32(int32(len(imm.Keys)))
		for i, key := range imm.Keys {
			w.S32(key)
			fixups = append(fixups, branchFixup{pos: w.Len(), insOff: at, ins: idx, target: imm.Targets[i], wide: true})
			w.U32(0)
		}
		return fixups, nil

	case MultiANewArrayImm:
		if imm.Dims == 0 {
			return nil, errors.InvalidData(errors.PhaseEncode, nil,
				"multianewarray with zero dimensions")
		}
		w.U8(OpMultianewarray)
		w.U16(e.pool.Class(imm.Name))
		w.U8(imm.Dims)

	default:
		return nil, errors.InvalidData(errors.PhaseEncode, nil,
			"unsupported immediate type %T", ins.Imm)
	}
	return nil, nil
}
