package classfile

import (
	"math"

	"github.com/wippyai/classfile-kit/classfile/internal/binary"
	"github.com/wippyai/classfile-kit/errors"
	"github.com/wippyai/classfile-kit/mutf8"
)

// poolEntry is one decoded constant pool slot. The reserved slot after a
// Long or Double keeps the zero tag.
type poolEntry struct {
	tag  ConstantTag
	str  string // Utf8 payload
	num  uint64 // Integer/Float/Long/Double bits
	idx1 uint16 // first index operand
	idx2 uint16 // second index operand
	kind byte   // MethodHandle reference kind
}

// ConstantPool is the per-class table of literals and references, indexed
// 1-based. It is built once while reading a class and discarded when the
// tree is fully resolved.
type ConstantPool struct {
	entries []poolEntry // entries[0] unused
}

// Size returns the pool count as stored in the file (number of slots + 1).
func (p *ConstantPool) Size() int {
	return len(p.entries)
}

// parseConstantPool reads the pool count and entries from r.
func parseConstantPool(r *binary.Reader) (*ConstantPool, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, errors.Truncated(errors.PhaseDecode, "pool_count", err)
	}
	if count == 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "pool_count is zero")
	}

	p := &ConstantPool{entries: make([]poolEntry, count)}
	for i := 1; i < int(count); i++ {
		tag, err := r.ReadU8()
		if err != nil {
			return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
		}
		e := &p.entries[i]
		e.tag = ConstantTag(tag)

		switch e.tag {
		case TagUtf8:
			length, err := r.ReadU16()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			raw, err := r.ReadBytes(int(length))
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			s, err := mutf8.Decode(raw)
			if err != nil {
				return nil, errors.MalformedEncoding(errors.PhaseDecode, []string{poolFrame(i)}, err)
			}
			e.str = s

		case TagInteger, TagFloat:
			v, err := r.ReadU32()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			e.num = uint64(v)

		case TagLong, TagDouble:
			v, err := r.ReadU64()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			e.num = v
			// The following slot is reserved and stays tag 0.
			i++

		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			v, err := r.ReadU16()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			e.idx1 = v

		case TagFieldRef, TagMethodRef, TagInterfaceMethodRef, TagNameAndType,
			TagDynamic, TagInvokeDynamic:
			v1, err := r.ReadU16()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			v2, err := r.ReadU16()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			e.idx1, e.idx2 = v1, v2

		case TagMethodHandle:
			kind, err := r.ReadU8()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			ref, err := r.ReadU16()
			if err != nil {
				return nil, errors.Truncated(errors.PhaseDecode, poolFrame(i), err)
			}
			e.kind, e.idx1 = kind, ref

		default:
			return nil, errors.UnknownTag(errors.PhaseDecode, "constant pool tag", tag)
		}
	}
	return p, nil
}

func poolFrame(i int) string {
	return "constant pool entry " + itoa(i)
}

// entry returns the slot at a 1-based index, rejecting index 0, out of
// range indices, and the reserved slot after a Long/Double.
func (p *ConstantPool) entry(idx uint16) (*poolEntry, error) {
	i := int(idx)
	if i == 0 || i >= len(p.entries) {
		return nil, errors.PoolIndexOutOfBounds(errors.PhaseResolve, i, len(p.entries))
	}
	e := &p.entries[i]
	if e.tag == 0 {
		return nil, errors.InvalidReference(errors.PhaseResolve, nil,
			"index %d is the reserved slot after a Long/Double entry", i)
	}
	return e, nil
}

func (p *ConstantPool) typedEntry(idx uint16, want ConstantTag) (*poolEntry, error) {
	e, err := p.entry(idx)
	if err != nil {
		return nil, err
	}
	if e.tag != want {
		return nil, errors.InvalidReference(errors.PhaseResolve, nil,
			"index %d holds %s, expected %s", idx, e.tag, want)
	}
	return e, nil
}

// Utf8 resolves a CONSTANT_Utf8 entry.
func (p *ConstantPool) Utf8(idx uint16) (string, error) {
	e, err := p.typedEntry(idx, TagUtf8)
	if err != nil {
		return "", err
	}
	return e.str, nil
}

// OptionalUtf8 resolves a Utf8 entry, mapping index 0 to "".
func (p *ConstantPool) OptionalUtf8(idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}
	return p.Utf8(idx)
}

// ClassName resolves a CONSTANT_Class entry to its name.
func (p *ConstantPool) ClassName(idx uint16) (string, error) {
	e, err := p.typedEntry(idx, TagClass)
	if err != nil {
		return "", err
	}
	return p.Utf8(e.idx1)
}

// OptionalClassName resolves a Class entry, mapping index 0 to "".
func (p *ConstantPool) OptionalClassName(idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}
	return p.ClassName(idx)
}

// ModuleName resolves a CONSTANT_Module entry to its name.
func (p *ConstantPool) ModuleName(idx uint16) (string, error) {
	e, err := p.typedEntry(idx, TagModule)
	if err != nil {
		return "", err
	}
	return p.Utf8(e.idx1)
}

// PackageName resolves a CONSTANT_Package entry to its name.
func (p *ConstantPool) PackageName(idx uint16) (string, error) {
	e, err := p.typedEntry(idx, TagPackage)
	if err != nil {
		return "", err
	}
	return p.Utf8(e.idx1)
}

// NameAndType resolves a CONSTANT_NameAndType entry.
func (p *ConstantPool) NameAndType(idx uint16) (name, desc string, err error) {
	e, err := p.typedEntry(idx, TagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = p.Utf8(e.idx1); err != nil {
		return "", "", err
	}
	if desc, err = p.Utf8(e.idx2); err != nil {
		return "", "", err
	}
	return name, desc, nil
}

// FieldRef resolves a CONSTANT_Fieldref entry to (owner, name, descriptor).
func (p *ConstantPool) FieldRef(idx uint16) (owner, name, desc string, err error) {
	e, err := p.typedEntry(idx, TagFieldRef)
	if err != nil {
		return "", "", "", err
	}
	return p.memberRef(e)
}

// MethodRef resolves a CONSTANT_Methodref or CONSTANT_InterfaceMethodref
// entry. iface reports which of the two tags was present.
func (p *ConstantPool) MethodRef(idx uint16) (owner, name, desc string, iface bool, err error) {
	e, err := p.entry(idx)
	if err != nil {
		return "", "", "", false, err
	}
	if e.tag != TagMethodRef && e.tag != TagInterfaceMethodRef {
		return "", "", "", false, errors.InvalidReference(errors.PhaseResolve, nil,
			"index %d holds %s, expected MethodRef or InterfaceMethodRef", idx, e.tag)
	}
	owner, name, desc, err = p.memberRef(e)
	return owner, name, desc, e.tag == TagInterfaceMethodRef, err
}

func (p *ConstantPool) memberRef(e *poolEntry) (owner, name, desc string, err error) {
	if owner, err = p.ClassName(e.idx1); err != nil {
		return "", "", "", err
	}
	if name, desc, err = p.NameAndType(e.idx2); err != nil {
		return "", "", "", err
	}
	return owner, name, desc, nil
}

// MethodHandleAt resolves a CONSTANT_MethodHandle entry.
func (p *ConstantPool) MethodHandleAt(idx uint16) (MethodHandle, error) {
	e, err := p.typedEntry(idx, TagMethodHandle)
	if err != nil {
		return MethodHandle{}, err
	}
	ref, err := p.entry(e.idx1)
	if err != nil {
		return MethodHandle{}, err
	}
	switch ref.tag {
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
	default:
		return MethodHandle{}, errors.InvalidReference(errors.PhaseResolve, nil,
			"method handle target %d holds %s, expected a member reference", e.idx1, ref.tag)
	}
	owner, name, desc, err := p.memberRef(ref)
	if err != nil {
		return MethodHandle{}, err
	}
	return MethodHandle{
		Kind:      e.kind,
		Owner:     owner,
		Name:      name,
		Desc:      desc,
		Interface: ref.tag == TagInterfaceMethodRef,
	}, nil
}

// Constant resolves a loadable constant: the value set ldc and bootstrap
// method arguments accept. The dynamic Go type encodes the pool tag:
// int32, float32, int64, float64, string, ClassConst, MethodTypeConst,
// MethodHandle, or DynamicConst.
func (p *ConstantPool) Constant(idx uint16) (any, error) {
	e, err := p.entry(idx)
	if err != nil {
		return nil, err
	}
	switch e.tag {
	case TagInteger:
		return int32(uint32(e.num)), nil
	case TagFloat:
		return math.Float32frombits(uint32(e.num)), nil
	case TagLong:
		return int64(e.num), nil
	case TagDouble:
		return math.Float64frombits(e.num), nil
	case TagString:
		return p.Utf8(e.idx1)
	case TagClass:
		name, err := p.Utf8(e.idx1)
		if err != nil {
			return nil, err
		}
		return ClassConst{Name: name}, nil
	case TagMethodType:
		desc, err := p.Utf8(e.idx1)
		if err != nil {
			return nil, err
		}
		return MethodTypeConst{Desc: desc}, nil
	case TagMethodHandle:
		return p.MethodHandleAt(idx)
	case TagDynamic:
		name, desc, err := p.NameAndType(e.idx2)
		if err != nil {
			return nil, err
		}
		return DynamicConst{BootstrapIndex: e.idx1, Name: name, Desc: desc}, nil
	default:
		return nil, errors.InvalidReference(errors.PhaseResolve, nil,
			"index %d holds %s, which is not a loadable constant", idx, e.tag)
	}
}

// itoa avoids pulling strconv into the hot path for small known-positive
// numbers used in error frames.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// poolBuilder builds a fresh constant pool while encoding a class. Values
// are interned by structural equality in first-use order; entry bytes are
// appended as values are first seen, so the completed pool can be emitted
// once the body has been fully serialized (final indices are not known
// until every reference has been visited once).
//
// Builder methods record the first error and return index 0 afterwards;
// callers check Err once per class.
type poolBuilder struct {
	w     *binary.Writer
	byKey map[poolKey]uint16
	next  int
	err   error
}

type poolKey struct {
	tag        ConstantTag
	s1, s2, s3 string
	num        uint64
	b          byte
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{
		w:     binary.NewWriter(),
		byKey: make(map[poolKey]uint16),
		next:  1,
	}
}

// Err returns the first interning error, if any.
func (b *poolBuilder) Err() error {
	return b.err
}

// Count returns the pool count to store in the file.
func (b *poolBuilder) Count() (uint16, error) {
	if b.next > 0xFFFF {
		return 0, errors.Overflow(errors.PhaseEncode, "pool_count", b.next)
	}
	return uint16(b.next), nil
}

// Bytes returns the serialized pool entries in index order.
func (b *poolBuilder) Bytes() []byte {
	return b.w.Bytes()
}

// seen reports whether key is already interned; it also short-circuits
// once an error has been recorded. Entries that depend on other entries
// intern their dependencies between seen and add, keeping pool bytes in
// index order.
func (b *poolBuilder) seen(key poolKey) (uint16, bool) {
	if b.err != nil {
		return 0, true
	}
	idx, ok := b.byKey[key]
	return idx, ok
}

// add reserves the next index for key and runs emit to append the entry
// bytes. wide entries take two slots.
func (b *poolBuilder) add(key poolKey, wide bool, emit func()) uint16 {
	if b.err != nil {
		return 0
	}
	slots := 1
	if wide {
		slots = 2
	}
	if b.next+slots > 0xFFFF+1 {
		b.err = errors.Overflow(errors.PhaseEncode, "pool_count", b.next+slots)
		return 0
	}
	idx := uint16(b.next)
	b.next += slots
	b.byKey[key] = idx
	emit()
	return idx
}

// Utf8 interns a CONSTANT_Utf8 entry.
func (b *poolBuilder) Utf8(s string) uint16 {
	key := poolKey{tag: TagUtf8, s1: s}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	enc := mutf8.Encode(s)
	if len(enc) > 0xFFFF {
		b.err = errors.Overflow(errors.PhaseEncode, "Utf8 length", len(enc))
		return 0
	}
	return b.add(key, false, func() {
		b.w.U8(byte(TagUtf8))
		b.w.U16(uint16(len(enc)))
		b.w.WriteBytes(enc)
	})
}

// Integer interns a CONSTANT_Integer entry.
func (b *poolBuilder) Integer(v int32) uint16 {
	key := poolKey{tag: TagInteger, num: uint64(uint32(v))}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	return b.add(key, false, func() {
		b.w.U8(byte(TagInteger))
		b.w.U32(uint32(v))
	})
}

// Float interns a CONSTANT_Float entry. NaNs intern by bit pattern.
func (b *poolBuilder) Float(v float32) uint16 {
	bits := math.Float32bits(v)
	key := poolKey{tag: TagFloat, num: uint64(bits)}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	return b.add(key, false, func() {
		b.w.U8(byte(TagFloat))
		b.w.U32(bits)
	})
}

// Long interns a CONSTANT_Long entry (two slots).
func (b *poolBuilder) Long(v int64) uint16 {
	key := poolKey{tag: TagLong, num: uint64(v)}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	return b.add(key, true, func() {
		b.w.U8(byte(TagLong))
		b.w.U64(uint64(v))
	})
}

// Double interns a CONSTANT_Double entry (two slots).
func (b *poolBuilder) Double(v float64) uint16 {
	bits := math.Float64bits(v)
	key := poolKey{tag: TagDouble, num: bits}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	return b.add(key, true, func() {
		b.w.U8(byte(TagDouble))
		b.w.U64(bits)
	})
}

// String interns a CONSTANT_String entry.
func (b *poolBuilder) String(s string) uint16 {
	key := poolKey{tag: TagString, s1: s}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	utf8 := b.Utf8(s)
	return b.add(key, false, func() {
		b.w.U8(byte(TagString))
		b.w.U16(utf8)
	})
}

// Class interns a CONSTANT_Class entry.
func (b *poolBuilder) Class(name string) uint16 {
	return b.named(TagClass, name)
}

// Module interns a CONSTANT_Module entry.
func (b *poolBuilder) Module(name string) uint16 {
	return b.named(TagModule, name)
}

// Package interns a CONSTANT_Package entry.
func (b *poolBuilder) Package(name string) uint16 {
	return b.named(TagPackage, name)
}

// MethodType interns a CONSTANT_MethodType entry.
func (b *poolBuilder) MethodType(desc string) uint16 {
	return b.named(TagMethodType, desc)
}

// named interns an entry whose sole operand is a Utf8 index.
func (b *poolBuilder) named(tag ConstantTag, name string) uint16 {
	key := poolKey{tag: tag, s1: name}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	utf8 := b.Utf8(name)
	return b.add(key, false, func() {
		b.w.U8(byte(tag))
		b.w.U16(utf8)
	})
}

// NameAndType interns a CONSTANT_NameAndType entry.
func (b *poolBuilder) NameAndType(name, desc string) uint16 {
	key := poolKey{tag: TagNameAndType, s1: name, s2: desc}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	n := b.Utf8(name)
	d := b.Utf8(desc)
	return b.add(key, false, func() {
		b.w.U8(byte(TagNameAndType))
		b.w.U16(n)
		b.w.U16(d)
	})
}

// FieldRef interns a CONSTANT_Fieldref entry.
func (b *poolBuilder) FieldRef(owner, name, desc string) uint16 {
	return b.memberRef(TagFieldRef, owner, name, desc)
}

// MethodRef interns a CONSTANT_Methodref or CONSTANT_InterfaceMethodref
// entry depending on iface.
func (b *poolBuilder) MethodRef(owner, name, desc string, iface bool) uint16 {
	tag := TagMethodRef
	if iface {
		tag = TagInterfaceMethodRef
	}
	return b.memberRef(tag, owner, name, desc)
}

func (b *poolBuilder) memberRef(tag ConstantTag, owner, name, desc string) uint16 {
	key := poolKey{tag: tag, s1: owner, s2: name, s3: desc}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	cls := b.Class(owner)
	nt := b.NameAndType(name, desc)
	return b.add(key, false, func() {
		b.w.U8(byte(tag))
		b.w.U16(cls)
		b.w.U16(nt)
	})
}

// MethodHandleRef interns a CONSTANT_MethodHandle entry.
func (b *poolBuilder) MethodHandleRef(h MethodHandle) uint16 {
	itf := byte(0)
	if h.Interface {
		itf = 1
	}
	key := poolKey{tag: TagMethodHandle, s1: h.Owner, s2: h.Name, s3: h.Desc, b: h.Kind, num: uint64(itf)}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	var ref uint16
	switch h.Kind {
	case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
		ref = b.FieldRef(h.Owner, h.Name, h.Desc)
	default:
		ref = b.MethodRef(h.Owner, h.Name, h.Desc, h.Interface)
	}
	return b.add(key, false, func() {
		b.w.U8(byte(TagMethodHandle))
		b.w.U8(h.Kind)
		b.w.U16(ref)
	})
}

// Dynamic interns a CONSTANT_Dynamic entry.
func (b *poolBuilder) Dynamic(c DynamicConst) uint16 {
	key := poolKey{tag: TagDynamic, s1: c.Name, s2: c.Desc, num: uint64(c.BootstrapIndex)}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	nt := b.NameAndType(c.Name, c.Desc)
	return b.add(key, false, func() {
		b.w.U8(byte(TagDynamic))
		b.w.U16(c.BootstrapIndex)
		b.w.U16(nt)
	})
}

// InvokeDynamic interns a CONSTANT_InvokeDynamic entry.
func (b *poolBuilder) InvokeDynamic(bootstrap uint16, name, desc string) uint16 {
	key := poolKey{tag: TagInvokeDynamic, s1: name, s2: desc, num: uint64(bootstrap)}
	if idx, ok := b.seen(key); ok {
		return idx
	}
	nt := b.NameAndType(name, desc)
	return b.add(key, false, func() {
		b.w.U8(byte(TagInvokeDynamic))
		b.w.U16(bootstrap)
		b.w.U16(nt)
	})
}

// Constant interns a loadable constant value; the inverse of
// (*ConstantPool).Constant.
func (b *poolBuilder) Constant(v any) uint16 {
	switch c := v.(type) {
	case int32:
		return b.Integer(c)
	case float32:
		return b.Float(c)
	case int64:
		return b.Long(c)
	case float64:
		return b.Double(c)
	case string:
		return b.String(c)
	case ClassConst:
		return b.Class(c.Name)
	case MethodTypeConst:
		return b.MethodType(c.Desc)
	case MethodHandle:
		return b.MethodHandleRef(c)
	case DynamicConst:
		return b.Dynamic(c)
	default:
		if b.err == nil {
			b.err = errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Detail("unsupported constant type %T", v).
				Value(v).
				Build()
		}
		return 0
	}
}

// wideConstant reports whether a loadable constant needs ldc2_w. A
// dynamically-computed constant is wide exactly when its descriptor is
// long or double.
func wideConstant(v any) bool {
	switch c := v.(type) {
	case int64, float64:
		return true
	case DynamicConst:
		return c.Desc == "J" || c.Desc == "D"
	}
	return false
}
