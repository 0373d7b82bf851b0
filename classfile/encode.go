package classfile

import (
	"github.com/wippyai/classfile-kit/classfile/internal/binary"
	"github.com/wippyai/classfile-kit/errors"
)

// WriteClass serializes a tree back to class-file bytes. The constant
// pool is rebuilt from scratch: entries are interned by structural
// equality in first-use order, so a read-write round trip of an
// unmodified tree reproduces a canonical pool even when the input pool
// carried duplicates.
func WriteClass(c *ClassFile) ([]byte, error) {
	e := &encoder{pool: newPoolBuilder()}

	body := binary.NewWriter()
	body.U16(uint16(c.Access))
	body.U16(e.pool.Class(c.Name))
	if c.SuperName == "" {
		body.U16(0)
	} else {
		body.U16(e.pool.Class(c.SuperName))
	}
	n, err := u16Count(len(c.Interfaces), "interfaces_count")
	if err != nil {
		return nil, err
	}
	body.U16(n)
	for _, iface := range c.Interfaces {
		body.U16(e.pool.Class(iface))
	}

	n, err = u16Count(len(c.Fields), "fields_count")
	if err != nil {
		return nil, err
	}
	body.U16(n)
	for i := range c.Fields {
		if err := e.field(body, &c.Fields[i]); err != nil {
			return nil, errors.In(err, "field "+c.Fields[i].Name)
		}
	}

	n, err = u16Count(len(c.Methods), "methods_count")
	if err != nil {
		return nil, err
	}
	body.U16(n)
	for i := range c.Methods {
		if err := e.method(body, &c.Methods[i]); err != nil {
			return nil, errors.In(err, "method "+c.Methods[i].Name)
		}
	}

	attrs, err := e.classAttrs(c)
	if err != nil {
		return nil, err
	}
	if err := e.writeAttrs(body, attrs); err != nil {
		return nil, err
	}
	if err := e.pool.Err(); err != nil {
		return nil, err
	}

	poolCount, err := e.pool.Count()
	if err != nil {
		return nil, err
	}
	out := binary.NewWriter()
	out.U32(Magic)
	out.U16(c.Version.Minor)
	out.U16(c.Version.Major)
	out.U16(poolCount)
	out.WriteBytes(e.pool.Bytes())
	out.Append(body)
	return out.Bytes(), nil
}

type encoder struct {
	pool *poolBuilder
}

// rawAttr is one serialized attribute awaiting its table.
type rawAttr struct {
	name string
	data []byte
}

func u16Count(n int, field string) (uint16, error) {
	if n > 0xFFFF {
		return 0, errors.Overflow(errors.PhaseEncode, field, n)
	}
	return uint16(n), nil
}

// writeAttrs emits an attribute table.
func (e *encoder) writeAttrs(w *binary.Writer, attrs []rawAttr) error {
	n, err := u16Count(len(attrs), "attributes_count")
	if err != nil {
		return err
	}
	w.U16(n)
	for _, a := range attrs {
		if int64(len(a.data)) > 0xFFFFFFFF {
			return errors.Overflow(errors.PhaseEncode, "attribute_length", len(a.data))
		}
		w.U16(e.pool.Utf8(a.name))
		w.U32(uint32(len(a.data)))
		w.WriteBytes(a.data)
	}
	return nil
}

func (e *encoder) classAttrs(c *ClassFile) ([]rawAttr, error) {
	var attrs []rawAttr
	add := func(name string, data []byte) {
		attrs = append(attrs, rawAttr{name: name, data: data})
	}

	if len(c.BootstrapMethods) > 0 {
		data, err := e.bootstrapMethods(c.BootstrapMethods)
		if err != nil {
			return nil, err
		}
		add(attrBootstrapMethods, data)
	}
	if c.Signature != "" {
		add(attrSignature, e.u16Payload(e.pool.Utf8(c.Signature)))
	}
	if c.SourceFile != "" {
		add(attrSourceFile, e.u16Payload(e.pool.Utf8(c.SourceFile)))
	}
	if c.SourceDebug != nil {
		add(attrSourceDebugExtension, c.SourceDebug)
	}
	if c.NestHost != "" {
		add(attrNestHost, e.u16Payload(e.pool.Class(c.NestHost)))
	}
	if len(c.NestMembers) > 0 {
		data, err := e.classList(c.NestMembers)
		if err != nil {
			return nil, err
		}
		add(attrNestMembers, data)
	}
	if len(c.PermittedSubcls) > 0 {
		data, err := e.classList(c.PermittedSubcls)
		if err != nil {
			return nil, err
		}
		add(attrPermittedSubclasses, data)
	}
	if c.EnclosingMethod != nil {
		w := binary.NewWriter()
		w.U16(e.pool.Class(c.EnclosingMethod.Owner))
		if c.EnclosingMethod.Name == "" {
			w.U16(0)
		} else {
			w.U16(e.pool.NameAndType(c.EnclosingMethod.Name, c.EnclosingMethod.Desc))
		}
		add(attrEnclosingMethod, w.Bytes())
	}
	if len(c.InnerClasses) > 0 {
		data, err := e.innerClasses(c.InnerClasses)
		if err != nil {
			return nil, err
		}
		add(attrInnerClasses, data)
	}
	if c.Module != nil {
		data, err := e.module(c.Module)
		if err != nil {
			return nil, err
		}
		add(attrModule, data)
	}
	if len(c.ModulePackages) > 0 {
		w := binary.NewWriter()
		n, err := u16Count(len(c.ModulePackages), "package_count")
		if err != nil {
			return nil, err
		}
		w.U16(n)
		for _, pkg := range c.ModulePackages {
			w.U16(e.pool.Package(pkg))
		}
		add(attrModulePackages, w.Bytes())
	}
	if c.ModuleMainClass != "" {
		add(attrModuleMainClass, e.u16Payload(e.pool.Class(c.ModuleMainClass)))
	}
	if len(c.RecordComponents) > 0 {
		data, err := e.record(c.RecordComponents)
		if err != nil {
			return nil, err
		}
		add(attrRecord, data)
	}
	if c.Deprecated {
		add(attrDeprecated, nil)
	}
	if c.Synthetic {
		add(attrSynthetic, nil)
	}
	var err error
	if attrs, err = e.annotationAttrs(attrs,
		c.VisibleAnnotations, c.InvisibleAnnotations,
		c.VisibleTypeAnnotations, c.InvisibleTypeAnnotations); err != nil {
		return nil, err
	}
	for _, a := range c.Attrs {
		add(a.Name, a.Data)
	}
	return attrs, nil
}

func (e *encoder) field(w *binary.Writer, f *Field) error {
	w.U16(uint16(f.Access))
	w.U16(e.pool.Utf8(f.Name))
	w.U16(e.pool.Utf8(f.Desc))

	var attrs []rawAttr
	if f.ConstantValue != nil {
		switch f.ConstantValue.(type) {
		case int32, float32, int64, float64, string:
		default:
			return errors.InvalidData(errors.PhaseEncode, nil,
				"constant of type %T cannot be a field initial value", f.ConstantValue)
		}
		attrs = append(attrs, rawAttr{attrConstantValue, e.u16Payload(e.pool.Constant(f.ConstantValue))})
	}
	if f.Signature != "" {
		attrs = append(attrs, rawAttr{attrSignature, e.u16Payload(e.pool.Utf8(f.Signature))})
	}
	if f.Deprecated {
		attrs = append(attrs, rawAttr{attrDeprecated, nil})
	}
	if f.Synthetic {
		attrs = append(attrs, rawAttr{attrSynthetic, nil})
	}
	var err error
	if attrs, err = e.annotationAttrs(attrs,
		f.VisibleAnnotations, f.InvisibleAnnotations,
		f.VisibleTypeAnnotations, f.InvisibleTypeAnnotations); err != nil {
		return err
	}
	for _, a := range f.Attrs {
		attrs = append(attrs, rawAttr{a.Name, a.Data})
	}
	return e.writeAttrs(w, attrs)
}

func (e *encoder) method(w *binary.Writer, m *Method) error {
	w.U16(uint16(m.Access))
	w.U16(e.pool.Utf8(m.Name))
	w.U16(e.pool.Utf8(m.Desc))

	var attrs []rawAttr
	if m.Code != nil {
		data, err := e.code(m.Code)
		if err != nil {
			return err
		}
		attrs = append(attrs, rawAttr{attrCode, data})
	}
	if len(m.Exceptions) > 0 {
		data, err := e.classList(m.Exceptions)
		if err != nil {
			return err
		}
		attrs = append(attrs, rawAttr{attrExceptions, data})
	}
	if len(m.Parameters) > 0 {
		if len(m.Parameters) > 0xFF {
			return errors.Overflow(errors.PhaseEncode, "parameters_count", len(m.Parameters))
		}
		pw := binary.NewWriter()
		pw.U8(byte(len(m.Parameters)))
		for _, p := range m.Parameters {
			if p.Name == "" {
				pw.U16(0)
			} else {
				pw.U16(e.pool.Utf8(p.Name))
			}
			pw.U16(uint16(p.Access))
		}
		attrs = append(attrs, rawAttr{attrMethodParameters, pw.Bytes()})
	}
	if m.Signature != "" {
		attrs = append(attrs, rawAttr{attrSignature, e.u16Payload(e.pool.Utf8(m.Signature))})
	}
	if m.Deprecated {
		attrs = append(attrs, rawAttr{attrDeprecated, nil})
	}
	if m.Synthetic {
		attrs = append(attrs, rawAttr{attrSynthetic, nil})
	}
	if m.AnnotationDefault != nil {
		dw := binary.NewWriter()
		if err := e.elementValue(dw, *m.AnnotationDefault, 0); err != nil {
			return err
		}
		attrs = append(attrs, rawAttr{attrAnnotationDefault, dw.Bytes()})
	}
	var err error
	if attrs, err = e.annotationAttrs(attrs,
		m.VisibleAnnotations, m.InvisibleAnnotations,
		m.VisibleTypeAnnotations, m.InvisibleTypeAnnotations); err != nil {
		return err
	}
	if len(m.VisibleParamAnnotations) > 0 {
		data, err := e.paramAnnotations(m.VisibleParamAnnotations)
		if err != nil {
			return err
		}
		attrs = append(attrs, rawAttr{attrRuntimeVisibleParameterAnnotations, data})
	}
	if len(m.InvisibleParamAnnotations) > 0 {
		data, err := e.paramAnnotations(m.InvisibleParamAnnotations)
		if err != nil {
			return err
		}
		attrs = append(attrs, rawAttr{attrRuntimeInvisibleParameterAnnotations, data})
	}
	for _, a := range m.Attrs {
		attrs = append(attrs, rawAttr{a.Name, a.Data})
	}
	return e.writeAttrs(w, attrs)
}

func (e *encoder) u16Payload(idx uint16) []byte {
	w := binary.NewWriter()
	w.U16(idx)
	return w.Bytes()
}

func (e *encoder) classList(names []string) ([]byte, error) {
	n, err := u16Count(len(names), "number_of_classes")
	if err != nil {
		return nil, err
	}
	w := binary.NewWriter()
	w.U16(n)
	for _, name := range names {
		w.U16(e.pool.Class(name))
	}
	return w.Bytes(), nil
}

func (e *encoder) innerClasses(entries []InnerClass) ([]byte, error) {
	n, err := u16Count(len(entries), "number_of_classes")
	if err != nil {
		return nil, err
	}
	w := binary.NewWriter()
	w.U16(n)
	for _, ic := range entries {
		w.U16(e.pool.Class(ic.Inner))
		if ic.Outer == "" {
			w.U16(0)
		} else {
			w.U16(e.pool.Class(ic.Outer))
		}
		if ic.Name == "" {
			w.U16(0)
		} else {
			w.U16(e.pool.Utf8(ic.Name))
		}
		w.U16(uint16(ic.Access))
	}
	return w.Bytes(), nil
}

func (e *encoder) bootstrapMethods(methods []BootstrapMethod) ([]byte, error) {
	n, err := u16Count(len(methods), "num_bootstrap_methods")
	if err != nil {
		return nil, err
	}
	w := binary.NewWriter()
	w.U16(n)
	for _, bm := range methods {
		w.U16(e.pool.MethodHandleRef(bm.Handle))
		an, err := u16Count(len(bm.Args), "num_bootstrap_arguments")
		if err != nil {
			return nil, err
		}
		w.U16(an)
		for _, arg := range bm.Args {
			w.U16(e.pool.Constant(arg))
		}
	}
	return w.Bytes(), nil
}

func (e *encoder) record(components []RecordComponent) ([]byte, error) {
	n, err := u16Count(len(components), "components_count")
	if err != nil {
		return nil, err
	}
	w := binary.NewWriter()
	w.U16(n)
	for i := range components {
		rc := &components[i]
		w.U16(e.pool.Utf8(rc.Name))
		w.U16(e.pool.Utf8(rc.Desc))
		var attrs []rawAttr
		if rc.Signature != "" {
			attrs = append(attrs, rawAttr{attrSignature, e.u16Payload(e.pool.Utf8(rc.Signature))})
		}
		if attrs, err = e.annotationAttrs(attrs,
			rc.VisibleAnnotations, rc.InvisibleAnnotations,
			rc.VisibleTypeAnnotations, rc.InvisibleTypeAnnotations); err != nil {
			return nil, err
		}
		for _, a := range rc.Attrs {
			attrs = append(attrs, rawAttr{a.Name, a.Data})
		}
		if err := e.writeAttrs(w, attrs); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (e *encoder) module(m *ModuleAttr) ([]byte, error) {
	w := binary.NewWriter()
	w.U16(e.pool.Module(m.Name))
	w.U16(uint16(m.Flags))
	if m.Version == "" {
		w.U16(0)
	} else {
		w.U16(e.pool.Utf8(m.Version))
	}

	n, err := u16Count(len(m.Requires), "requires_count")
	if err != nil {
		return nil, err
	}
	w.U16(n)
	for _, req := range m.Requires {
		w.U16(e.pool.Module(req.Module))
		w.U16(uint16(req.Flags))
		if req.Version == "" {
			w.U16(0)
		} else {
			w.U16(e.pool.Utf8(req.Version))
		}
	}

	for _, refs := range [][]ModulePackageRef{m.Exports, m.Opens} {
		n, err := u16Count(len(refs), "package_ref_count")
		if err != nil {
			return nil, err
		}
		w.U16(n)
		for _, ref := range refs {
			w.U16(e.pool.Package(ref.Package))
			w.U16(uint16(ref.Flags))
			tn, err := u16Count(len(ref.To), "to_count")
			if err != nil {
				return nil, err
			}
			w.U16(tn)
			for _, to := range ref.To {
				w.U16(e.pool.Module(to))
			}
		}
	}

	n, err = u16Count(len(m.Uses), "uses_count")
	if err != nil {
		return nil, err
	}
	w.U16(n)
	for _, use := range m.Uses {
		w.U16(e.pool.Class(use))
	}

	n, err = u16Count(len(m.Provides), "provides_count")
	if err != nil {
		return nil, err
	}
	w.U16(n)
	for _, prov := range m.Provides {
		w.U16(e.pool.Class(prov.Service))
		wn, err := u16Count(len(prov.With), "provides_with_count")
		if err != nil {
			return nil, err
		}
		w.U16(wn)
		for _, with := range prov.With {
			w.U16(e.pool.Class(with))
		}
	}
	return w.Bytes(), nil
}

// annotationAttrs appends the four runtime annotation attributes for any
// of the slices that are non-empty.
func (e *encoder) annotationAttrs(attrs []rawAttr,
	visible, invisible []Annotation,
	visibleTyped, invisibleTyped []TypeAnnotation) ([]rawAttr, error) {

	groups := []struct {
		name  string
		annos []Annotation
		typed []TypeAnnotation
	}{
		{attrRuntimeVisibleAnnotations, visible, nil},
		{attrRuntimeInvisibleAnnotations, invisible, nil},
		{attrRuntimeVisibleTypeAnnotations, nil, visibleTyped},
		{attrRuntimeInvisibleTypeAnnotations, nil, invisibleTyped},
	}
	for _, g := range groups {
		if len(g.annos) == 0 && len(g.typed) == 0 {
			continue
		}
		w := binary.NewWriter()
		if g.typed == nil {
			n, err := u16Count(len(g.annos), "num_annotations")
			if err != nil {
				return nil, err
			}
			w.U16(n)
			for _, a := range g.annos {
				if err := e.annotation(w, a, 0); err != nil {
					return nil, err
				}
			}
		} else {
			n, err := u16Count(len(g.typed), "num_annotations")
			if err != nil {
				return nil, err
			}
			w.U16(n)
			for _, ta := range g.typed {
				if err := e.typeAnnotation(w, ta); err != nil {
					return nil, err
				}
			}
		}
		attrs = append(attrs, rawAttr{g.name, w.Bytes()})
	}
	return attrs, nil
}

func (e *encoder) paramAnnotations(groups [][]Annotation) ([]byte, error) {
	if len(groups) > 0xFF {
		return nil, errors.Overflow(errors.PhaseEncode, "num_parameters", len(groups))
	}
	w := binary.NewWriter()
	w.U8(byte(len(groups)))
	for _, annos := range groups {
		n, err := u16Count(len(annos), "num_annotations")
		if err != nil {
			return nil, err
		}
		w.U16(n)
		for _, a := range annos {
			if err := e.annotation(w, a, 0); err != nil {
				return nil, err
			}
		}
	}
	return w.Bytes(), nil
}

func (e *encoder) annotation(w *binary.Writer, a Annotation, depth int) error {
	if depth > maxAnnotationDepth {
		return errors.InvalidData(errors.PhaseEncode, nil,
			"annotation nesting exceeds %d levels", maxAnnotationDepth)
	}
	w.U16(e.pool.Utf8(a.Type))
	n, err := u16Count(len(a.Elements), "num_element_value_pairs")
	if err != nil {
		return err
	}
	w.U16(n)
	for _, pair := range a.Elements {
		w.U16(e.pool.Utf8(pair.Name))
		if err := e.elementValue(w, pair.Value, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) elementValue(w *binary.Writer, ev ElementValue, depth int) error {
	if depth > maxAnnotationDepth {
		return errors.InvalidData(errors.PhaseEncode, nil,
			"annotation nesting exceeds %d levels", maxAnnotationDepth)
	}
	w.U8(ev.Tag)
	switch ev.Tag {
	case 'B', 'C', 'I', 'S', 'Z', 'D', 'F', 'J', 's':
		w.U16(e.pool.Constant(ev.Const))
	case 'e':
		w.U16(e.pool.Utf8(ev.EnumType))
		w.U16(e.pool.Utf8(ev.EnumName))
	case 'c':
		w.U16(e.pool.Utf8(ev.ClassDesc))
	case '@':
		if ev.Nested == nil {
			return errors.InvalidData(errors.PhaseEncode, nil,
				"element value '@' with nil annotation")
		}
		return e.annotation(w, *ev.Nested, depth+1)
	case '[':
		n, err := u16Count(len(ev.Array), "num_values")
		if err != nil {
			return err
		}
		w.U16(n)
		for _, inner := range ev.Array {
			if err := e.elementValue(w, inner, depth+1); err != nil {
				return err
			}
		}
	default:
		return errors.UnknownTag(errors.PhaseEncode, "element value tag", ev.Tag)
	}
	return nil
}

func (e *encoder) typeAnnotation(w *binary.Writer, ta TypeAnnotation) error {
	w.U8(ta.TargetType)
	w.WriteBytes(ta.TargetInfo)
	if len(ta.TargetPath) == 0 {
		// Empty type_path still needs its length byte.
		w.U8(0)
	} else {
		w.WriteBytes(ta.TargetPath)
	}
	return e.annotation(w, ta.Annotation, 0)
}
