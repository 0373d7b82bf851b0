package classfile

import (
	"go.uber.org/zap"

	"github.com/wippyai/classfile-kit/classfile/internal/binary"
	"github.com/wippyai/classfile-kit/errors"
)

// ReadClass parses exactly one class from data into a fully materialized
// tree. Trailing bytes after the class are an error.
//
// The returned tree may alias data in raw attribute payloads; callers
// that mutate data afterwards should copy first.
func ReadClass(data []byte) (*ClassFile, error) {
	c := &ClassFile{}
	if err := Accept(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Accept parses exactly one class from data, driving v through the
// visitor protocol in file order. v's Interests gate which optional
// payloads are decoded; child visitors returning nil skip their subtree
// at the byte level. Trailing bytes after the class are an error.
func Accept(data []byte, v ClassVisitor) error {
	d := &decoder{r: binary.NewReader(data), v: v, want: v.Interests()}
	if err := d.class(); err != nil {
		return err
	}
	if n := d.r.Remaining(); n > 0 {
		return errors.InvalidData(errors.PhaseDecode, nil,
			"%d trailing bytes after class", n)
	}
	v.VisitEnd()
	return nil
}

type decoder struct {
	r    *binary.Reader
	pool *ConstantPool
	v    ClassVisitor
	want Interests
}

func (d *decoder) class() error {
	magic, err := d.r.ReadU32()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "magic", err)
	}
	if magic != Magic {
		return errors.InvalidData(errors.PhaseDecode, nil,
			"bad magic 0x%08X", magic)
	}
	minor, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "minor_version", err)
	}
	major, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "major_version", err)
	}
	if major < MinMajorVersion || major > MaxMajorVersion {
		return errors.Unsupported(errors.PhaseDecode,
			"class file major version "+itoa(int(major)))
	}

	if d.pool, err = parseConstantPool(d.r); err != nil {
		return err
	}

	access, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "access_flags", err)
	}
	thisIdx, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "this_class", err)
	}
	name, err := d.pool.ClassName(thisIdx)
	if err != nil {
		return errors.In(err, "this_class")
	}
	superIdx, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "super_class", err)
	}
	superName, err := d.pool.OptionalClassName(superIdx)
	if err != nil {
		return errors.In(err, "super_class")
	}
	ifaceCount, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "interfaces_count", err)
	}
	var interfaces []string
	for i := 0; i < int(ifaceCount); i++ {
		idx, err := d.r.ReadU16()
		if err != nil {
			return errors.Truncated(errors.PhaseDecode, "interfaces", err)
		}
		iname, err := d.pool.ClassName(idx)
		if err != nil {
			return errors.In(err, "interfaces")
		}
		interfaces = append(interfaces, iname)
	}

	d.v.VisitHeader(Version{Minor: minor, Major: major}, AccessFlags(access), name, superName, interfaces)

	if err := d.members("field"); err != nil {
		return err
	}
	if err := d.members("method"); err != nil {
		return err
	}
	return d.classAttributes()
}

// members reads the fields or methods table.
func (d *decoder) members(kind string) error {
	count, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, kind+"s_count", err)
	}
	for i := 0; i < int(count); i++ {
		if err := d.member(kind); err != nil {
			return errors.In(err, kind+" "+itoa(i))
		}
	}
	return nil
}

func (d *decoder) member(kind string) error {
	access, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "access_flags", err)
	}
	nameIdx, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "name_index", err)
	}
	name, err := d.pool.Utf8(nameIdx)
	if err != nil {
		return err
	}
	descIdx, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "descriptor_index", err)
	}
	desc, err := d.pool.Utf8(descIdx)
	if err != nil {
		return err
	}

	if kind == "field" {
		fv := d.v.VisitField(AccessFlags(access), name, desc)
		if fv == nil {
			return d.skipAttributes()
		}
		if err := d.fieldAttributes(fv); err != nil {
			return err
		}
		fv.VisitEnd()
		return nil
	}

	mv := d.v.VisitMethod(AccessFlags(access), name, desc)
	if mv == nil {
		return d.skipAttributes()
	}
	if err := d.methodAttributes(mv); err != nil {
		return err
	}
	mv.VisitEnd()
	return nil
}

// skipAttributes discards an attribute table using only its framing.
func (d *decoder) skipAttributes() error {
	count, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "attributes_count", err)
	}
	for i := 0; i < int(count); i++ {
		if err := d.r.Skip(2); err != nil {
			return errors.Truncated(errors.PhaseDecode, "attribute_name_index", err)
		}
		length, err := d.r.ReadU32()
		if err != nil {
			return errors.Truncated(errors.PhaseDecode, "attribute_length", err)
		}
		if err := d.r.Skip(int(length)); err != nil {
			return errors.Truncated(errors.PhaseDecode, "attribute payload", err)
		}
	}
	return nil
}

// eachAttribute reads an attribute table and hands each entry to fn as a
// name plus its raw payload. fn errors carry the attribute name as a
// context frame.
func (d *decoder) eachAttribute(fn func(name string, data []byte) error) error {
	count, err := d.r.ReadU16()
	if err != nil {
		return errors.Truncated(errors.PhaseDecode, "attributes_count", err)
	}
	for i := 0; i < int(count); i++ {
		nameIdx, err := d.r.ReadU16()
		if err != nil {
			return errors.Truncated(errors.PhaseDecode, "attribute_name_index", err)
		}
		name, err := d.pool.Utf8(nameIdx)
		if err != nil {
			return err
		}
		length, err := d.r.ReadU32()
		if err != nil {
			return errors.Truncated(errors.PhaseDecode, "attribute_length", err)
		}
		data, err := d.r.ReadBytes(int(length))
		if err != nil {
			return errors.Truncated(errors.PhaseDecode, "attribute payload", err)
		}
		if err := fn(name, data); err != nil {
			return errors.In(err, "attribute "+name)
		}
	}
	return nil
}

// drained errors when an attribute payload was not fully consumed.
func drained(r *binary.Reader) error {
	if n := r.Remaining(); n > 0 {
		return errors.InvalidData(errors.PhaseDecode, nil,
			"%d trailing bytes in attribute", n)
	}
	return nil
}

// unknown delivers an uninterpreted attribute, honoring Interests.
func (d *decoder) unknown(sink func(Attribute), name string, data []byte) {
	if !d.want.UnknownAttributes {
		Logger().Debug("dropping unrecognized attribute",
			zap.String("attribute", name), zap.Int("size", len(data)))
		return
	}
	sink(Attribute{Name: name, Data: data})
}

func (d *decoder) classAttributes() error {
	var (
		module    *ModuleAttr
		packages  []string
		mainClass string
	)
	err := d.eachAttribute(func(name string, data []byte) error {
		r := binary.NewReader(data)
		switch name {
		case attrSignature:
			if !d.want.Signatures {
				return nil
			}
			sig, err := d.utf8At(r)
			if err != nil {
				return err
			}
			d.v.VisitSignature(sig)

		case attrSourceFile:
			if !d.want.Debug {
				return nil
			}
			file, err := d.utf8At(r)
			if err != nil {
				return err
			}
			d.v.VisitSourceFile(file)

		case attrSourceDebugExtension:
			if !d.want.Debug {
				return nil
			}
			d.v.VisitSourceDebug(data)
			return nil

		case attrNestHost:
			host, err := d.classNameAt(r)
			if err != nil {
				return err
			}
			d.v.VisitNestHost(host)

		case attrNestMembers:
			names, err := d.classNameList(r)
			if err != nil {
				return err
			}
			d.v.VisitNestMembers(names)

		case attrPermittedSubclasses:
			names, err := d.classNameList(r)
			if err != nil {
				return err
			}
			d.v.VisitPermittedSubclasses(names)

		case attrEnclosingMethod:
			em, err := d.enclosingMethod(r)
			if err != nil {
				return err
			}
			d.v.VisitEnclosingMethod(em)

		case attrInnerClasses:
			if err := d.innerClasses(r); err != nil {
				return err
			}

		case attrBootstrapMethods:
			if err := d.bootstrapMethods(r); err != nil {
				return err
			}

		case attrModule:
			m, err := d.module(r)
			if err != nil {
				return err
			}
			module = m

		case attrModulePackages:
			count, err := r.ReadU16()
			if err != nil {
				return err
			}
			for i := 0; i < int(count); i++ {
				idx, err := r.ReadU16()
				if err != nil {
					return err
				}
				pkg, err := d.pool.PackageName(idx)
				if err != nil {
					return err
				}
				packages = append(packages, pkg)
			}

		case attrModuleMainClass:
			mc, err := d.classNameAt(r)
			if err != nil {
				return err
			}
			mainClass = mc

		case attrDeprecated:
			d.v.VisitDeprecated()

		case attrSynthetic:
			d.v.VisitSynthetic()

		case attrRecord:
			if err := d.record(r); err != nil {
				return err
			}

		case attrRuntimeVisibleAnnotations, attrRuntimeInvisibleAnnotations:
			return d.annotations(r, name == attrRuntimeVisibleAnnotations, d.v.VisitAnnotations)

		case attrRuntimeVisibleTypeAnnotations, attrRuntimeInvisibleTypeAnnotations:
			return d.typeAnnotations(r, name == attrRuntimeVisibleTypeAnnotations, d.v.VisitAnnotations)

		default:
			d.unknown(d.v.VisitAttribute, name, data)
			return nil
		}
		return drained(r)
	})
	if err != nil {
		return err
	}
	if module != nil {
		d.v.VisitModule(*module, packages, mainClass)
	}
	return nil
}

func (d *decoder) fieldAttributes(fv FieldVisitor) error {
	return d.eachAttribute(func(name string, data []byte) error {
		r := binary.NewReader(data)
		switch name {
		case attrConstantValue:
			idx, err := r.ReadU16()
			if err != nil {
				return err
			}
			v, err := d.pool.Constant(idx)
			if err != nil {
				return err
			}
			switch v.(type) {
			case int32, float32, int64, float64, string:
			default:
				return errors.InvalidReference(errors.PhaseDecode, nil,
					"constant of type %T cannot be a field initial value", v)
			}
			fv.VisitConstantValue(v)

		case attrSignature:
			if !d.want.Signatures {
				return nil
			}
			sig, err := d.utf8At(r)
			if err != nil {
				return err
			}
			fv.VisitSignature(sig)

		case attrDeprecated:
			fv.VisitDeprecated()

		case attrSynthetic:
			fv.VisitSynthetic()

		case attrRuntimeVisibleAnnotations, attrRuntimeInvisibleAnnotations:
			return d.annotations(r, name == attrRuntimeVisibleAnnotations, fv.VisitAnnotations)

		case attrRuntimeVisibleTypeAnnotations, attrRuntimeInvisibleTypeAnnotations:
			return d.typeAnnotations(r, name == attrRuntimeVisibleTypeAnnotations, fv.VisitAnnotations)

		default:
			d.unknown(fv.VisitAttribute, name, data)
			return nil
		}
		return drained(r)
	})
}

func (d *decoder) methodAttributes(mv MethodVisitor) error {
	return d.eachAttribute(func(name string, data []byte) error {
		r := binary.NewReader(data)
		switch name {
		case attrCode:
			if !d.want.Code {
				return nil
			}
			cv := mv.VisitCode()
			if cv == nil {
				return nil
			}
			if err := d.code(r, cv); err != nil {
				return err
			}
			cv.VisitEnd()

		case attrExceptions:
			names, err := d.classNameList(r)
			if err != nil {
				return err
			}
			mv.VisitExceptions(names)

		case attrMethodParameters:
			if !d.want.Debug {
				return nil
			}
			count, err := r.ReadU8()
			if err != nil {
				return err
			}
			for i := 0; i < int(count); i++ {
				nameIdx, err := r.ReadU16()
				if err != nil {
					return err
				}
				pname, err := d.pool.OptionalUtf8(nameIdx)
				if err != nil {
					return err
				}
				access, err := r.ReadU16()
				if err != nil {
					return err
				}
				mv.VisitParameter(MethodParameter{Name: pname, Access: AccessFlags(access)})
			}

		case attrSignature:
			if !d.want.Signatures {
				return nil
			}
			sig, err := d.utf8At(r)
			if err != nil {
				return err
			}
			mv.VisitSignature(sig)

		case attrDeprecated:
			mv.VisitDeprecated()

		case attrSynthetic:
			mv.VisitSynthetic()

		case attrAnnotationDefault:
			if !d.want.Annotations {
				return nil
			}
			ev, err := d.elementValue(r, 0)
			if err != nil {
				return err
			}
			mv.VisitAnnotationDefault(ev)

		case attrRuntimeVisibleAnnotations, attrRuntimeInvisibleAnnotations:
			return d.annotations(r, name == attrRuntimeVisibleAnnotations, mv.VisitAnnotations)

		case attrRuntimeVisibleTypeAnnotations, attrRuntimeInvisibleTypeAnnotations:
			return d.typeAnnotations(r, name == attrRuntimeVisibleTypeAnnotations, mv.VisitAnnotations)

		case attrRuntimeVisibleParameterAnnotations, attrRuntimeInvisibleParameterAnnotations:
			return d.parameterAnnotations(r, name == attrRuntimeVisibleParameterAnnotations, mv)

		default:
			d.unknown(mv.VisitAttribute, name, data)
			return nil
		}
		return drained(r)
	})
}

// code parses one Code attribute payload.
func (d *decoder) code(r *binary.Reader, cv CodeVisitor) error {
	maxStack, err := r.ReadU16()
	if err != nil {
		return err
	}
	maxLocals, err := r.ReadU16()
	if err != nil {
		return err
	}
	codeLen, err := r.ReadU32()
	if err != nil {
		return err
	}
	code, err := r.ReadBytes(int(codeLen))
	if err != nil {
		return err
	}
	cv.VisitMaxs(maxStack, maxLocals)

	instructions, offsets, labels, err := decodeInstructions(code, d.pool)
	if err != nil {
		return err
	}
	// The end sentinel is always registered so exclusive range ends
	// resolve.
	end, err := labels.labelAt(len(code))
	if err != nil {
		return err
	}

	tryCount, err := r.ReadU16()
	if err != nil {
		return err
	}
	blocks := make([]TryCatchBlock, 0, tryCount)
	for i := 0; i < int(tryCount); i++ {
		tc, err := d.tryCatch(r, labels)
		if err != nil {
			return errors.In(err, "exception table entry "+itoa(i))
		}
		blocks = append(blocks, tc)
	}

	// The debug tables mint labels at the positions they reference, so
	// they are parsed before labels are pinned to instructions. Their
	// visits are buffered and replayed after the instruction stream.
	var tables codeTables
	sub := &decoder{r: r, pool: d.pool, v: d.v, want: d.want}
	err = sub.eachAttribute(func(name string, data []byte) error {
		ar := binary.NewReader(data)
		switch name {
		case attrStackMapTable:
			tables.stackMaps = append(tables.stackMaps, data)
			return nil

		case attrLineNumberTable:
			if !d.want.Debug {
				return nil
			}
			count, err := ar.ReadU16()
			if err != nil {
				return err
			}
			for i := 0; i < int(count); i++ {
				start, err := ar.ReadU16()
				if err != nil {
					return err
				}
				line, err := ar.ReadU16()
				if err != nil {
					return err
				}
				label, err := labels.labelAt(int(start))
				if err != nil {
					return err
				}
				tables.lines = append(tables.lines, LineNumber{Start: label, Line: line})
			}

		case attrLocalVariableTable, attrLocalVariableTypeTable:
			if !d.want.Debug {
				return nil
			}
			vars, err := d.localVariables(ar, labels, name == attrLocalVariableTypeTable)
			if err != nil {
				return err
			}
			tables.vars = append(tables.vars, vars...)

		default:
			tables.raw = append(tables.raw, Attribute{Name: name, Data: data})
			return nil
		}
		return drained(ar)
	})
	if err != nil {
		return err
	}

	// Only positions something references carry a label.
	for i, off := range offsets {
		instructions[i].Label = labels.at(off)
	}

	for _, ins := range instructions {
		cv.VisitInstruction(ins)
	}
	cv.VisitEndLabel(end)
	for _, tc := range blocks {
		cv.VisitTryCatch(tc)
	}
	for _, sm := range tables.stackMaps {
		cv.VisitStackMap(sm)
	}
	for _, ln := range tables.lines {
		cv.VisitLineNumber(ln)
	}
	for _, v := range tables.vars {
		cv.VisitLocalVariable(v.v, v.typed)
	}
	for _, a := range tables.raw {
		d.unknown(cv.VisitAttribute, a.Name, a.Data)
	}
	return nil
}

// codeTables buffers the post-bytecode sections of one Code attribute
// until every label they mint exists.
type codeTables struct {
	stackMaps [][]byte
	lines     []LineNumber
	vars      []codeVar
	raw       []Attribute
}

type codeVar struct {
	v     LocalVariable
	typed bool
}

func (d *decoder) tryCatch(r *binary.Reader, labels *labelReader) (TryCatchBlock, error) {
	var tc TryCatchBlock
	start, err := r.ReadU16()
	if err != nil {
		return tc, err
	}
	end, err := r.ReadU16()
	if err != nil {
		return tc, err
	}
	handler, err := r.ReadU16()
	if err != nil {
		return tc, err
	}
	typeIdx, err := r.ReadU16()
	if err != nil {
		return tc, err
	}
	if tc.Range.Start, err = labels.labelAt(int(start)); err != nil {
		return tc, err
	}
	if tc.Range.End, err = labels.labelAt(int(end)); err != nil {
		return tc, err
	}
	if tc.Handler, err = labels.labelAt(int(handler)); err != nil {
		return tc, err
	}
	if tc.Type, err = d.pool.OptionalClassName(typeIdx); err != nil {
		return tc, err
	}
	return tc, nil
}

func (d *decoder) localVariables(r *binary.Reader, labels *labelReader, typed bool) ([]codeVar, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	out := make([]codeVar, 0, count)
	for i := 0; i < int(count); i++ {
		start, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		length, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		index, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		var lv LocalVariable
		if lv.Name, err = d.pool.Utf8(nameIdx); err != nil {
			return nil, err
		}
		if lv.Desc, err = d.pool.Utf8(descIdx); err != nil {
			return nil, err
		}
		if lv.Range.Start, err = labels.labelAt(int(start)); err != nil {
			return nil, err
		}
		if lv.Range.End, err = labels.labelAt(int(start) + int(length)); err != nil {
			return nil, err
		}
		lv.Index = index
		out = append(out, codeVar{v: lv, typed: typed})
	}
	return out, nil
}

func (d *decoder) record(r *binary.Reader) error {
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.ReadU16()
		if err != nil {
			return err
		}
		name, err := d.pool.Utf8(nameIdx)
		if err != nil {
			return err
		}
		descIdx, err := r.ReadU16()
		if err != nil {
			return err
		}
		desc, err := d.pool.Utf8(descIdx)
		if err != nil {
			return err
		}
		rv := d.v.VisitRecordComponent(name, desc)
		sub := &decoder{r: r, pool: d.pool, v: d.v, want: d.want}
		if rv == nil {
			if err := sub.skipAttributes(); err != nil {
				return err
			}
			continue
		}
		err = sub.eachAttribute(func(name string, data []byte) error {
			ar := binary.NewReader(data)
			switch name {
			case attrSignature:
				if !d.want.Signatures {
					return nil
				}
				sig, err := d.utf8At(ar)
				if err != nil {
					return err
				}
				rv.VisitSignature(sig)

			case attrRuntimeVisibleAnnotations, attrRuntimeInvisibleAnnotations:
				return d.annotations(ar, name == attrRuntimeVisibleAnnotations, rv.VisitAnnotations)

			case attrRuntimeVisibleTypeAnnotations, attrRuntimeInvisibleTypeAnnotations:
				return d.typeAnnotations(ar, name == attrRuntimeVisibleTypeAnnotations, rv.VisitAnnotations)

			default:
				d.unknown(rv.VisitAttribute, name, data)
				return nil
			}
			return drained(ar)
		})
		if err != nil {
			return errors.In(err, "record component "+name)
		}
		rv.VisitEnd()
	}
	return nil
}

func (d *decoder) enclosingMethod(r *binary.Reader) (EnclosingMethod, error) {
	var em EnclosingMethod
	classIdx, err := r.ReadU16()
	if err != nil {
		return em, err
	}
	methodIdx, err := r.ReadU16()
	if err != nil {
		return em, err
	}
	if em.Owner, err = d.pool.ClassName(classIdx); err != nil {
		return em, err
	}
	if methodIdx != 0 {
		if em.Name, em.Desc, err = d.pool.NameAndType(methodIdx); err != nil {
			return em, err
		}
	}
	return em, nil
}

func (d *decoder) innerClasses(r *binary.Reader) error {
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		innerIdx, err := r.ReadU16()
		if err != nil {
			return err
		}
		outerIdx, err := r.ReadU16()
		if err != nil {
			return err
		}
		nameIdx, err := r.ReadU16()
		if err != nil {
			return err
		}
		access, err := r.ReadU16()
		if err != nil {
			return err
		}
		var ic InnerClass
		if ic.Inner, err = d.pool.ClassName(innerIdx); err != nil {
			return err
		}
		if ic.Outer, err = d.pool.OptionalClassName(outerIdx); err != nil {
			return err
		}
		if ic.Name, err = d.pool.OptionalUtf8(nameIdx); err != nil {
			return err
		}
		ic.Access = AccessFlags(access)
		d.v.VisitInnerClass(ic)
	}
	return nil
}

func (d *decoder) bootstrapMethods(r *binary.Reader) error {
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		handleIdx, err := r.ReadU16()
		if err != nil {
			return err
		}
		handle, err := d.pool.MethodHandleAt(handleIdx)
		if err != nil {
			return err
		}
		argCount, err := r.ReadU16()
		if err != nil {
			return err
		}
		bm := BootstrapMethod{Handle: handle}
		for j := 0; j < int(argCount); j++ {
			argIdx, err := r.ReadU16()
			if err != nil {
				return err
			}
			arg, err := d.pool.Constant(argIdx)
			if err != nil {
				return err
			}
			bm.Args = append(bm.Args, arg)
		}
		d.v.VisitBootstrapMethod(bm)
	}
	return nil
}

func (d *decoder) module(r *binary.Reader) (*ModuleAttr, error) {
	m := &ModuleAttr{}
	nameIdx, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if m.Name, err = d.pool.ModuleName(nameIdx); err != nil {
		return nil, err
	}
	flags, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	m.Flags = AccessFlags(flags)
	versionIdx, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if m.Version, err = d.pool.OptionalUtf8(versionIdx); err != nil {
		return nil, err
	}

	reqCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(reqCount); i++ {
		var req ModuleRequire
		modIdx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		if req.Module, err = d.pool.ModuleName(modIdx); err != nil {
			return nil, err
		}
		rflags, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		req.Flags = AccessFlags(rflags)
		verIdx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		if req.Version, err = d.pool.OptionalUtf8(verIdx); err != nil {
			return nil, err
		}
		m.Requires = append(m.Requires, req)
	}

	if m.Exports, err = d.packageRefs(r); err != nil {
		return nil, err
	}
	if m.Opens, err = d.packageRefs(r); err != nil {
		return nil, err
	}

	usesCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(usesCount); i++ {
		idx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		cn, err := d.pool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		m.Uses = append(m.Uses, cn)
	}

	provCount, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(provCount); i++ {
		var prov ModuleProvide
		svcIdx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		if prov.Service, err = d.pool.ClassName(svcIdx); err != nil {
			return nil, err
		}
		withCount, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		for j := 0; j < int(withCount); j++ {
			idx, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			cn, err := d.pool.ClassName(idx)
			if err != nil {
				return nil, err
			}
			prov.With = append(prov.With, cn)
		}
		m.Provides = append(m.Provides, prov)
	}
	return m, nil
}

func (d *decoder) packageRefs(r *binary.Reader) ([]ModulePackageRef, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	var out []ModulePackageRef
	for i := 0; i < int(count); i++ {
		var ref ModulePackageRef
		pkgIdx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		if ref.Package, err = d.pool.PackageName(pkgIdx); err != nil {
			return nil, err
		}
		flags, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		ref.Flags = AccessFlags(flags)
		toCount, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		for j := 0; j < int(toCount); j++ {
			idx, err := r.ReadU16()
			if err != nil {
				return nil, err
			}
			mod, err := d.pool.ModuleName(idx)
			if err != nil {
				return nil, err
			}
			ref.To = append(ref.To, mod)
		}
		out = append(out, ref)
	}
	return out, nil
}

// annotations parses one Runtime{Visible,Invisible}Annotations payload.
func (d *decoder) annotations(r *binary.Reader, visible bool, open func(bool) AnnotationVisitor) error {
	if !d.want.Annotations {
		return nil
	}
	av := open(visible)
	if av == nil {
		return nil
	}
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		a, err := d.annotation(r, 0)
		if err != nil {
			return err
		}
		av.VisitAnnotation(a)
	}
	if err := drained(r); err != nil {
		return err
	}
	av.VisitEnd()
	return nil
}

// typeAnnotations parses one Runtime{Visible,Invisible}TypeAnnotations
// payload attached to a declaration.
func (d *decoder) typeAnnotations(r *binary.Reader, visible bool, open func(bool) AnnotationVisitor) error {
	if !d.want.TypeAnnotations {
		return nil
	}
	av := open(visible)
	if av == nil {
		return nil
	}
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		ta, err := d.typeAnnotation(r)
		if err != nil {
			return err
		}
		av.VisitTypeAnnotation(ta)
	}
	if err := drained(r); err != nil {
		return err
	}
	av.VisitEnd()
	return nil
}

func (d *decoder) parameterAnnotations(r *binary.Reader, visible bool, mv MethodVisitor) error {
	if !d.want.Annotations {
		return nil
	}
	paramCount, err := r.ReadU8()
	if err != nil {
		return err
	}
	for p := 0; p < int(paramCount); p++ {
		av := mv.VisitParameterAnnotations(visible, p)
		count, err := r.ReadU16()
		if err != nil {
			return err
		}
		for i := 0; i < int(count); i++ {
			a, err := d.annotation(r, 0)
			if err != nil {
				return err
			}
			if av != nil {
				av.VisitAnnotation(a)
			}
		}
		if av != nil {
			av.VisitEnd()
		}
	}
	return drained(r)
}

// maxAnnotationDepth bounds recursion through nested annotation values so
// crafted input cannot exhaust the stack.
const maxAnnotationDepth = 64

func (d *decoder) annotation(r *binary.Reader, depth int) (Annotation, error) {
	var a Annotation
	if depth > maxAnnotationDepth {
		return a, errors.InvalidData(errors.PhaseDecode, nil,
			"annotation nesting exceeds %d levels", maxAnnotationDepth)
	}
	typeIdx, err := r.ReadU16()
	if err != nil {
		return a, err
	}
	if a.Type, err = d.pool.Utf8(typeIdx); err != nil {
		return a, err
	}
	count, err := r.ReadU16()
	if err != nil {
		return a, err
	}
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.ReadU16()
		if err != nil {
			return a, err
		}
		name, err := d.pool.Utf8(nameIdx)
		if err != nil {
			return a, err
		}
		ev, err := d.elementValue(r, depth+1)
		if err != nil {
			return a, err
		}
		a.Elements = append(a.Elements, ElementValuePair{Name: name, Value: ev})
	}
	return a, nil
}

func (d *decoder) elementValue(r *binary.Reader, depth int) (ElementValue, error) {
	var ev ElementValue
	if depth > maxAnnotationDepth {
		return ev, errors.InvalidData(errors.PhaseDecode, nil,
			"annotation nesting exceeds %d levels", maxAnnotationDepth)
	}
	tag, err := r.ReadU8()
	if err != nil {
		return ev, err
	}
	ev.Tag = tag
	switch tag {
	case 'B', 'C', 'I', 'S', 'Z', 'D', 'F', 'J', 's':
		idx, err := r.ReadU16()
		if err != nil {
			return ev, err
		}
		v, err := d.pool.Constant(idx)
		if err != nil {
			return ev, err
		}
		ev.Const = v

	case 'e':
		typeIdx, err := r.ReadU16()
		if err != nil {
			return ev, err
		}
		nameIdx, err := r.ReadU16()
		if err != nil {
			return ev, err
		}
		if ev.EnumType, err = d.pool.Utf8(typeIdx); err != nil {
			return ev, err
		}
		if ev.EnumName, err = d.pool.Utf8(nameIdx); err != nil {
			return ev, err
		}

	case 'c':
		idx, err := r.ReadU16()
		if err != nil {
			return ev, err
		}
		if ev.ClassDesc, err = d.pool.Utf8(idx); err != nil {
			return ev, err
		}

	case '@':
		a, err := d.annotation(r, depth+1)
		if err != nil {
			return ev, err
		}
		ev.Nested = &a

	case '[':
		count, err := r.ReadU16()
		if err != nil {
			return ev, err
		}
		for i := 0; i < int(count); i++ {
			inner, err := d.elementValue(r, depth+1)
			if err != nil {
				return ev, err
			}
			ev.Array = append(ev.Array, inner)
		}

	default:
		return ev, errors.UnknownTag(errors.PhaseDecode, "element value tag", tag)
	}
	return ev, nil
}

func (d *decoder) typeAnnotation(r *binary.Reader) (TypeAnnotation, error) {
	var ta TypeAnnotation
	targetType, err := r.ReadU8()
	if err != nil {
		return ta, err
	}
	ta.TargetType = targetType

	infoLen, err := targetInfoLength(r, targetType)
	if err != nil {
		return ta, err
	}
	if ta.TargetInfo, err = r.ReadBytes(infoLen); err != nil {
		return ta, err
	}

	pathStart := r.Position()
	pathLen, err := r.ReadU8()
	if err != nil {
		return ta, err
	}
	if err := r.Skip(2 * int(pathLen)); err != nil {
		return ta, err
	}
	pathEnd := r.Position()
	if err := r.Reset(pathStart); err != nil {
		return ta, err
	}
	if ta.TargetPath, err = r.ReadBytes(pathEnd - pathStart); err != nil {
		return ta, err
	}

	if ta.Annotation, err = d.annotation(r, 0); err != nil {
		return ta, err
	}
	return ta, nil
}

// targetInfoLength returns the byte size of the target_info union for a
// target_type, peeking ahead for the variable-length localvar form.
func targetInfoLength(r *binary.Reader, targetType byte) (int, error) {
	switch targetType {
	case 0x00, 0x01, 0x16:
		return 1, nil
	case 0x10, 0x11, 0x12, 0x17, 0x42, 0x43, 0x44, 0x45, 0x46:
		return 2, nil
	case 0x13, 0x14, 0x15:
		return 0, nil
	case 0x47, 0x48, 0x49, 0x4A, 0x4B:
		return 3, nil
	case 0x40, 0x41:
		pos := r.Position()
		tableLen, err := r.ReadU16()
		if err != nil {
			return 0, err
		}
		if err := r.Reset(pos); err != nil {
			return 0, err
		}
		return 2 + 6*int(tableLen), nil
	}
	return 0, errors.UnknownTag(errors.PhaseDecode, "type annotation target", targetType)
}

func (d *decoder) utf8At(r *binary.Reader) (string, error) {
	idx, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	return d.pool.Utf8(idx)
}

func (d *decoder) classNameAt(r *binary.Reader) (string, error) {
	idx, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	return d.pool.ClassName(idx)
}

func (d *decoder) classNameList(r *binary.Reader) ([]string, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	var out []string
	for i := 0; i < int(count); i++ {
		idx, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		name, err := d.pool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}
