package classfile

// The tree types double as visitors: feeding a parse through a *ClassFile
// materializes the whole class, and WriteClass replays a materialized
// tree back out. Every Visit method appends to or sets the receiver's own
// fields.
//
// The protocol is enforced at runtime: visiting after VisitEnd panics,
// since it indicates a caller bug rather than bad input.

func (c *ClassFile) checkOpen() {
	if c.finished {
		panic("classfile: ClassFile visited after VisitEnd")
	}
}

// Interests requests everything so a read-write round trip is lossless.
func (c *ClassFile) Interests() Interests {
	return AllInterests()
}

func (c *ClassFile) VisitHeader(version Version, access AccessFlags, name, superName string, interfaces []string) {
	c.checkOpen()
	c.Version = version
	c.Access = access
	c.Name = name
	c.SuperName = superName
	c.Interfaces = interfaces
}

func (c *ClassFile) VisitSignature(sig string) {
	c.checkOpen()
	c.Signature = sig
}

func (c *ClassFile) VisitSourceFile(file string) {
	c.checkOpen()
	c.SourceFile = file
}

func (c *ClassFile) VisitSourceDebug(ext []byte) {
	c.checkOpen()
	c.SourceDebug = ext
}

func (c *ClassFile) VisitNestHost(host string) {
	c.checkOpen()
	c.NestHost = host
}

func (c *ClassFile) VisitNestMembers(members []string) {
	c.checkOpen()
	c.NestMembers = append(c.NestMembers, members...)
}

func (c *ClassFile) VisitPermittedSubclasses(names []string) {
	c.checkOpen()
	c.PermittedSubcls = append(c.PermittedSubcls, names...)
}

func (c *ClassFile) VisitEnclosingMethod(em EnclosingMethod) {
	c.checkOpen()
	c.EnclosingMethod = &em
}

func (c *ClassFile) VisitInnerClass(ic InnerClass) {
	c.checkOpen()
	c.InnerClasses = append(c.InnerClasses, ic)
}

func (c *ClassFile) VisitBootstrapMethod(bm BootstrapMethod) {
	c.checkOpen()
	c.BootstrapMethods = append(c.BootstrapMethods, bm)
}

func (c *ClassFile) VisitModule(m ModuleAttr, packages []string, mainClass string) {
	c.checkOpen()
	c.Module = &m
	c.ModulePackages = packages
	c.ModuleMainClass = mainClass
}

func (c *ClassFile) VisitDeprecated() {
	c.checkOpen()
	c.Deprecated = true
}

func (c *ClassFile) VisitSynthetic() {
	c.checkOpen()
	c.Synthetic = true
}

func (c *ClassFile) VisitAnnotations(visible bool) AnnotationVisitor {
	c.checkOpen()
	if visible {
		return &annotationList{annos: &c.VisibleAnnotations, typed: &c.VisibleTypeAnnotations}
	}
	return &annotationList{annos: &c.InvisibleAnnotations, typed: &c.InvisibleTypeAnnotations}
}

func (c *ClassFile) VisitRecordComponent(name, desc string) RecordComponentVisitor {
	c.checkOpen()
	c.RecordComponents = append(c.RecordComponents, RecordComponent{Name: name, Desc: desc})
	return &c.RecordComponents[len(c.RecordComponents)-1]
}

func (c *ClassFile) VisitField(access AccessFlags, name, desc string) FieldVisitor {
	c.checkOpen()
	c.Fields = append(c.Fields, Field{Access: access, Name: name, Desc: desc})
	return &c.Fields[len(c.Fields)-1]
}

func (c *ClassFile) VisitMethod(access AccessFlags, name, desc string) MethodVisitor {
	c.checkOpen()
	c.Methods = append(c.Methods, Method{Access: access, Name: name, Desc: desc})
	return &c.Methods[len(c.Methods)-1]
}

func (c *ClassFile) VisitAttribute(attr Attribute) {
	c.checkOpen()
	c.Attrs = append(c.Attrs, attr)
}

func (c *ClassFile) VisitEnd() {
	c.checkOpen()
	c.finished = true
}

func (f *Field) checkOpen() {
	if f.finished {
		panic("classfile: Field visited after VisitEnd")
	}
}

func (f *Field) VisitConstantValue(value any) {
	f.checkOpen()
	f.ConstantValue = value
}

func (f *Field) VisitSignature(sig string) {
	f.checkOpen()
	f.Signature = sig
}

func (f *Field) VisitDeprecated() {
	f.checkOpen()
	f.Deprecated = true
}

func (f *Field) VisitSynthetic() {
	f.checkOpen()
	f.Synthetic = true
}

func (f *Field) VisitAnnotations(visible bool) AnnotationVisitor {
	f.checkOpen()
	if visible {
		return &annotationList{annos: &f.VisibleAnnotations, typed: &f.VisibleTypeAnnotations}
	}
	return &annotationList{annos: &f.InvisibleAnnotations, typed: &f.InvisibleTypeAnnotations}
}

func (f *Field) VisitAttribute(attr Attribute) {
	f.checkOpen()
	f.Attrs = append(f.Attrs, attr)
}

func (f *Field) VisitEnd() {
	f.checkOpen()
	f.finished = true
}

func (m *Method) checkOpen() {
	if m.finished {
		panic("classfile: Method visited after VisitEnd")
	}
}

func (m *Method) VisitExceptions(types []string) {
	m.checkOpen()
	m.Exceptions = append(m.Exceptions, types...)
}

func (m *Method) VisitParameter(p MethodParameter) {
	m.checkOpen()
	m.Parameters = append(m.Parameters, p)
}

func (m *Method) VisitSignature(sig string) {
	m.checkOpen()
	m.Signature = sig
}

func (m *Method) VisitDeprecated() {
	m.checkOpen()
	m.Deprecated = true
}

func (m *Method) VisitSynthetic() {
	m.checkOpen()
	m.Synthetic = true
}

func (m *Method) VisitAnnotationDefault(value ElementValue) {
	m.checkOpen()
	m.AnnotationDefault = &value
}

func (m *Method) VisitAnnotations(visible bool) AnnotationVisitor {
	m.checkOpen()
	if visible {
		return &annotationList{annos: &m.VisibleAnnotations, typed: &m.VisibleTypeAnnotations}
	}
	return &annotationList{annos: &m.InvisibleAnnotations, typed: &m.InvisibleTypeAnnotations}
}

func (m *Method) VisitParameterAnnotations(visible bool, param int) AnnotationVisitor {
	m.checkOpen()
	slot := &m.VisibleParamAnnotations
	if !visible {
		slot = &m.InvisibleParamAnnotations
	}
	for len(*slot) <= param {
		*slot = append(*slot, nil)
	}
	return &paramAnnotationList{groups: slot, param: param}
}

func (m *Method) VisitCode() CodeVisitor {
	m.checkOpen()
	m.Code = &Code{}
	return m.Code
}

func (m *Method) VisitAttribute(attr Attribute) {
	m.checkOpen()
	m.Attrs = append(m.Attrs, attr)
}

func (m *Method) VisitEnd() {
	m.checkOpen()
	m.finished = true
}

func (c *Code) checkOpen() {
	if c.finished {
		panic("classfile: Code visited after VisitEnd")
	}
}

func (c *Code) VisitMaxs(maxStack, maxLocals uint16) {
	c.checkOpen()
	c.MaxStack = maxStack
	c.MaxLocals = maxLocals
}

func (c *Code) VisitInstruction(ins Instruction) {
	c.checkOpen()
	c.Instructions = append(c.Instructions, ins)
}

func (c *Code) VisitEndLabel(l *Label) {
	c.checkOpen()
	c.End = l
}

func (c *Code) VisitTryCatch(tc TryCatchBlock) {
	c.checkOpen()
	c.TryCatch = append(c.TryCatch, tc)
}

func (c *Code) VisitLineNumber(ln LineNumber) {
	c.checkOpen()
	c.LineNumbers = append(c.LineNumbers, ln)
}

func (c *Code) VisitLocalVariable(lv LocalVariable, typed bool) {
	c.checkOpen()
	if typed {
		c.LocalTypes = append(c.LocalTypes, lv)
	} else {
		c.LocalVars = append(c.LocalVars, lv)
	}
}

func (c *Code) VisitStackMap(data []byte) {
	c.checkOpen()
	c.StackMap = data
}

func (c *Code) VisitAttribute(attr Attribute) {
	c.checkOpen()
	c.Attrs = append(c.Attrs, attr)
}

func (c *Code) VisitEnd() {
	c.checkOpen()
	c.finished = true
}

func (r *RecordComponent) checkOpen() {
	if r.finished {
		panic("classfile: RecordComponent visited after VisitEnd")
	}
}

func (r *RecordComponent) VisitSignature(sig string) {
	r.checkOpen()
	r.Signature = sig
}

func (r *RecordComponent) VisitAnnotations(visible bool) AnnotationVisitor {
	r.checkOpen()
	if visible {
		return &annotationList{annos: &r.VisibleAnnotations, typed: &r.VisibleTypeAnnotations}
	}
	return &annotationList{annos: &r.InvisibleAnnotations, typed: &r.InvisibleTypeAnnotations}
}

func (r *RecordComponent) VisitAttribute(attr Attribute) {
	r.checkOpen()
	r.Attrs = append(r.Attrs, attr)
}

func (r *RecordComponent) VisitEnd() {
	r.checkOpen()
	r.finished = true
}

// annotationList appends one attribute group's annotations into the
// owner's slices.
type annotationList struct {
	annos    *[]Annotation
	typed    *[]TypeAnnotation
	finished bool
}

func (l *annotationList) VisitAnnotation(a Annotation) {
	if l.finished {
		panic("classfile: annotation group visited after VisitEnd")
	}
	*l.annos = append(*l.annos, a)
}

func (l *annotationList) VisitTypeAnnotation(a TypeAnnotation) {
	if l.finished {
		panic("classfile: annotation group visited after VisitEnd")
	}
	*l.typed = append(*l.typed, a)
}

func (l *annotationList) VisitEnd() {
	if l.finished {
		panic("classfile: annotation group visited after VisitEnd")
	}
	l.finished = true
}

// paramAnnotationList appends into one parameter slot of a method.
type paramAnnotationList struct {
	groups   *[][]Annotation
	param    int
	finished bool
}

func (l *paramAnnotationList) VisitAnnotation(a Annotation) {
	if l.finished {
		panic("classfile: annotation group visited after VisitEnd")
	}
	(*l.groups)[l.param] = append((*l.groups)[l.param], a)
}

func (l *paramAnnotationList) VisitTypeAnnotation(a TypeAnnotation) {
	if l.finished {
		panic("classfile: annotation group visited after VisitEnd")
	}
}

func (l *paramAnnotationList) VisitEnd() {
	if l.finished {
		panic("classfile: annotation group visited after VisitEnd")
	}
	l.finished = true
}
