package classfile

// Interests declares which optional payloads a visitor wants. The reader
// consults it before parsing the corresponding attributes; payloads left
// out are skipped at the byte level without decoding.
type Interests struct {
	// Signatures covers the Signature attribute on classes, fields,
	// methods, and record components.
	Signatures bool

	// Annotations covers Runtime{Visible,Invisible}Annotations,
	// parameter annotations, and AnnotationDefault.
	Annotations bool

	// TypeAnnotations covers Runtime{Visible,Invisible}TypeAnnotations.
	TypeAnnotations bool

	// Code covers method bodies. Without it, VisitCode is never called
	// and Code attributes are skipped unparsed.
	Code bool

	// Debug covers SourceFile, SourceDebugExtension, LineNumberTable,
	// LocalVariableTable, LocalVariableTypeTable, and MethodParameters.
	Debug bool

	// UnknownAttributes covers attributes the codec does not interpret,
	// delivered raw through VisitAttribute.
	UnknownAttributes bool
}

// AllInterests requests every optional payload. The materializing tree
// types use it so nothing is lost in a round trip.
func AllInterests() Interests {
	return Interests{
		Signatures:        true,
		Annotations:       true,
		TypeAnnotations:   true,
		Code:              true,
		Debug:             true,
		UnknownAttributes: true,
	}
}

// ClassVisitor receives one class in declaration order: header first,
// class-level attributes and members in file order, VisitEnd last.
//
// Methods returning a child visitor may return nil to skip that subtree;
// the reader then discards the corresponding bytes without parsing them
// beyond what framing requires. After VisitEnd the reader makes no
// further calls.
type ClassVisitor interface {
	// Interests is consulted once, before the class body is parsed.
	Interests() Interests

	VisitHeader(version Version, access AccessFlags, name, superName string, interfaces []string)

	VisitSignature(sig string)
	VisitSourceFile(file string)
	VisitSourceDebug(ext []byte)
	VisitNestHost(host string)
	VisitNestMembers(members []string)
	VisitPermittedSubclasses(names []string)
	VisitEnclosingMethod(em EnclosingMethod)
	VisitInnerClass(ic InnerClass)
	VisitBootstrapMethod(bm BootstrapMethod)
	VisitModule(m ModuleAttr, packages []string, mainClass string)
	VisitDeprecated()
	VisitSynthetic()

	// VisitAnnotations opens the class annotation group for one of the
	// four runtime annotation attributes.
	VisitAnnotations(visible bool) AnnotationVisitor

	VisitRecordComponent(name, desc string) RecordComponentVisitor
	VisitField(access AccessFlags, name, desc string) FieldVisitor
	VisitMethod(access AccessFlags, name, desc string) MethodVisitor

	// VisitAttribute delivers an attribute the codec does not interpret.
	VisitAttribute(attr Attribute)

	VisitEnd()
}

// FieldVisitor receives one field's attributes.
type FieldVisitor interface {
	VisitConstantValue(value any)
	VisitSignature(sig string)
	VisitDeprecated()
	VisitSynthetic()
	VisitAnnotations(visible bool) AnnotationVisitor
	VisitAttribute(attr Attribute)
	VisitEnd()
}

// MethodVisitor receives one method's attributes. VisitCode is called at
// most once, when the method has a body and the class visitor's Interests
// include Code.
type MethodVisitor interface {
	VisitExceptions(types []string)
	VisitParameter(p MethodParameter)
	VisitSignature(sig string)
	VisitDeprecated()
	VisitSynthetic()
	VisitAnnotationDefault(value ElementValue)
	VisitAnnotations(visible bool) AnnotationVisitor

	// VisitParameterAnnotations opens the annotation group of one
	// parameter slot.
	VisitParameterAnnotations(visible bool, param int) AnnotationVisitor

	VisitCode() CodeVisitor
	VisitAttribute(attr Attribute)
	VisitEnd()
}

// CodeVisitor receives one method body. Instructions arrive in bytecode
// order; labels referenced anywhere in the body are positional handles
// valid only within this body.
type CodeVisitor interface {
	VisitMaxs(maxStack, maxLocals uint16)
	VisitInstruction(ins Instruction)

	// VisitEndLabel delivers the label one past the last instruction,
	// after all instructions and before any table entries.
	VisitEndLabel(l *Label)

	VisitTryCatch(tc TryCatchBlock)
	VisitLineNumber(ln LineNumber)

	// VisitLocalVariable receives LocalVariableTable entries, and, with
	// typed set, LocalVariableTypeTable entries.
	VisitLocalVariable(lv LocalVariable, typed bool)

	// VisitStackMap delivers the StackMapTable payload verbatim.
	VisitStackMap(data []byte)

	// VisitAttribute delivers uninterpreted Code attributes, including
	// code-level type annotations, which carry raw bytecode offsets.
	VisitAttribute(attr Attribute)
	VisitEnd()
}

// AnnotationVisitor receives the annotations of one attribute group.
type AnnotationVisitor interface {
	VisitAnnotation(a Annotation)
	VisitTypeAnnotation(a TypeAnnotation)
	VisitEnd()
}

// RecordComponentVisitor receives one record component's attributes.
type RecordComponentVisitor interface {
	VisitSignature(sig string)
	VisitAnnotations(visible bool) AnnotationVisitor
	VisitAttribute(attr Attribute)
	VisitEnd()
}
