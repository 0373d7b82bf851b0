package classfile

// Version is a class-file format version pair. Versions order by major
// then minor.
type Version struct {
	Minor uint16
	Major uint16
}

// ClassFile is the fully materialized representation of one class. It owns
// all of its children by value; nothing is shared between trees.
type ClassFile struct {
	Version    Version
	Access     AccessFlags
	Name       string
	SuperName  string // "" for java/lang/Object and for module-info
	Interfaces []string

	Fields  []Field
	Methods []Method

	Signature       string
	SourceFile      string
	SourceDebug     []byte
	NestHost        string
	NestMembers     []string
	PermittedSubcls []string
	EnclosingMethod *EnclosingMethod
	InnerClasses    []InnerClass
	Module          *ModuleAttr
	ModulePackages  []string
	ModuleMainClass string
	Deprecated      bool
	Synthetic       bool

	BootstrapMethods []BootstrapMethod
	RecordComponents []RecordComponent

	VisibleAnnotations       []Annotation
	InvisibleAnnotations     []Annotation
	VisibleTypeAnnotations   []TypeAnnotation
	InvisibleTypeAnnotations []TypeAnnotation

	// Attrs holds attributes the codec does not interpret, byte for byte.
	Attrs []Attribute

	finished bool
}

// Field is one field_info record.
type Field struct {
	Access AccessFlags
	Name   string
	Desc   string

	// ConstantValue is nil or one of int32, float32, int64, float64, string.
	ConstantValue any

	Signature  string
	Deprecated bool
	Synthetic  bool

	VisibleAnnotations       []Annotation
	InvisibleAnnotations     []Annotation
	VisibleTypeAnnotations   []TypeAnnotation
	InvisibleTypeAnnotations []TypeAnnotation

	Attrs []Attribute

	finished bool
}

// Method is one method_info record.
type Method struct {
	Access AccessFlags
	Name   string
	Desc   string

	Code       *Code // nil for abstract and native methods
	Exceptions []string
	Parameters []MethodParameter

	Signature  string
	Deprecated bool
	Synthetic  bool

	AnnotationDefault *ElementValue

	VisibleAnnotations       []Annotation
	InvisibleAnnotations     []Annotation
	VisibleTypeAnnotations   []TypeAnnotation
	InvisibleTypeAnnotations []TypeAnnotation

	// Parameter annotations, outer slice indexed by parameter.
	VisibleParamAnnotations   [][]Annotation
	InvisibleParamAnnotations [][]Annotation

	Attrs []Attribute

	finished bool
}

// MethodParameter is one MethodParameters entry. Name may be empty
// (name_index 0).
type MethodParameter struct {
	Name   string
	Access AccessFlags
}

// Code is a method body. Labels referenced by instructions, ranges, line
// numbers and local variables all belong to this body's label table.
type Code struct {
	MaxStack  uint16
	MaxLocals uint16

	Instructions []Instruction

	// End marks the position just past the last instruction. Ranges use
	// it as their exclusive upper bound.
	End *Label

	TryCatch    []TryCatchBlock
	LineNumbers []LineNumber
	LocalVars   []LocalVariable
	LocalTypes  []LocalVariable

	// StackMap carries the StackMapTable attribute verbatim. It stays
	// valid as long as re-encoding does not move any instruction.
	StackMap []byte

	Attrs []Attribute

	finished bool
}

// TryCatchBlock is one exception table entry. Type is "" for catch-all.
type TryCatchBlock struct {
	Range   LabelRange
	Handler *Label
	Type    string
}

// LineNumber associates a source line with a bytecode position.
type LineNumber struct {
	Start *Label
	Line  uint16
}

// LocalVariable is one LocalVariableTable or LocalVariableTypeTable entry.
// Desc holds the descriptor or, in the type table, the generic signature.
type LocalVariable struct {
	Name  string
	Desc  string
	Range LabelRange
	Index uint16
}

// EnclosingMethod names the immediately enclosing method of a local or
// anonymous class. Name and Desc are empty when the class is not enclosed
// in a method body.
type EnclosingMethod struct {
	Owner string
	Name  string
	Desc  string
}

// InnerClass is one InnerClasses table entry. Inner, Outer, and Name may
// be empty where the format allows index 0.
type InnerClass struct {
	Inner  string
	Outer  string
	Name   string
	Access AccessFlags
}

// RecordComponent is one Record attribute entry.
type RecordComponent struct {
	Name string
	Desc string

	Signature string

	VisibleAnnotations       []Annotation
	InvisibleAnnotations     []Annotation
	VisibleTypeAnnotations   []TypeAnnotation
	InvisibleTypeAnnotations []TypeAnnotation

	Attrs []Attribute

	finished bool
}

// BootstrapMethod is one BootstrapMethods entry. Args hold loadable
// constants: the same value set ldc accepts.
type BootstrapMethod struct {
	Handle MethodHandle
	Args   []any
}

// MethodHandle is a CONSTANT_MethodHandle value.
type MethodHandle struct {
	Kind      byte
	Owner     string
	Name      string
	Desc      string
	Interface bool
}

// ClassConst is a loadable CONSTANT_Class value (as seen by ldc).
type ClassConst struct {
	Name string
}

// MethodTypeConst is a loadable CONSTANT_MethodType value.
type MethodTypeConst struct {
	Desc string
}

// DynamicConst is a loadable CONSTANT_Dynamic value.
type DynamicConst struct {
	BootstrapIndex uint16
	Name           string
	Desc           string
}

// Annotation is one annotation structure: a field/method/class annotation
// or a nested annotation value.
type Annotation struct {
	Type     string // field descriptor of the annotation interface
	Elements []ElementValuePair
}

// ElementValuePair is one named element inside an annotation.
type ElementValuePair struct {
	Name  string
	Value ElementValue
}

// ElementValue is one element_value union. Tag selects which member is
// meaningful, mirroring JVMS 4.7.16.1:
//
//	'B','C','D','F','I','J','S','Z','s'  Const
//	'e'                                  EnumType, EnumName
//	'c'                                  ClassDesc
//	'@'                                  Nested
//	'['                                  Array
type ElementValue struct {
	Tag       byte
	Const     any
	EnumType  string
	EnumName  string
	ClassDesc string
	Nested    *Annotation
	Array     []ElementValue
}

// TypeAnnotation is one type_annotation structure attached to a class,
// field, or method declaration. TargetInfo and TargetPath carry the
// target_info and type_path bytes verbatim so unfamiliar target kinds
// still round-trip.
type TypeAnnotation struct {
	TargetType byte
	TargetInfo []byte
	TargetPath []byte
	Annotation Annotation
}

// Attribute is a raw attribute the codec does not interpret.
type Attribute struct {
	Name string
	Data []byte
}

// ModuleAttr is the Module attribute.
type ModuleAttr struct {
	Name     string
	Flags    AccessFlags
	Version  string // "" when absent
	Requires []ModuleRequire
	Exports  []ModulePackageRef
	Opens    []ModulePackageRef
	Uses     []string
	Provides []ModuleProvide
}

// ModuleRequire is one requires entry.
type ModuleRequire struct {
	Module  string
	Flags   AccessFlags
	Version string
}

// ModulePackageRef is one exports or opens entry.
type ModulePackageRef struct {
	Package string
	Flags   AccessFlags
	To      []string
}

// ModuleProvide is one provides entry.
type ModuleProvide struct {
	Service string
	With    []string
}
