package classfile

// Class-file magic number and supported version range.
const (
	// Magic is the class-file magic number.
	Magic uint32 = 0xCAFEBABE

	// MinMajorVersion is the oldest supported major version (JDK 1.0.2).
	// Files below 45.3 use narrower Code attribute fields and are rejected.
	MinMajorVersion uint16 = 45

	// MaxMajorVersion is the newest recognized major version.
	MaxMajorVersion uint16 = 69
)

// ConstantTag identifies the kind of a constant pool entry.
type ConstantTag byte

// Constant pool tags. A Long or Double entry occupies two consecutive
// pool slots; the slot after it is reserved and never directly usable.
const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldRef           ConstantTag = 9
	TagMethodRef          ConstantTag = 10
	TagInterfaceMethodRef ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20
)

var tagNames = map[ConstantTag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldRef:           "FieldRef",
	TagMethodRef:          "MethodRef",
	TagInterfaceMethodRef: "InterfaceMethodRef",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

// String returns the JVMS name of the tag.
func (t ConstantTag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "Unknown"
}

// AccessFlags is the bit set of access and property flags carried by
// classes, fields, methods, parameters, and module pieces.
type AccessFlags uint16

// Access and property flags. A flag's meaning depends on where it appears;
// the overlapping values match JVMS tables 4.1, 4.5, 4.6 and 4.7.25.
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020 // class
	AccSynchronized AccessFlags = 0x0020 // method
	AccOpen         AccessFlags = 0x0020 // module
	AccTransitive   AccessFlags = 0x0020 // module requires
	AccVolatile     AccessFlags = 0x0040 // field
	AccBridge       AccessFlags = 0x0040 // method
	AccStaticPhase  AccessFlags = 0x0040 // module requires
	AccTransient    AccessFlags = 0x0080 // field
	AccVarargs      AccessFlags = 0x0080 // method
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000 // class
	AccMandated     AccessFlags = 0x8000 // parameter/module
)

// Has reports whether all bits of flag are set.
func (f AccessFlags) Has(flag AccessFlags) bool {
	return f&flag == flag
}

// Recognized attribute names. Anything else rides through as a raw
// Attribute offered to VisitAttribute.
const (
	attrConstantValue                        = "ConstantValue"
	attrCode                                 = "Code"
	attrStackMapTable                        = "StackMapTable"
	attrExceptions                           = "Exceptions"
	attrInnerClasses                         = "InnerClasses"
	attrEnclosingMethod                      = "EnclosingMethod"
	attrSynthetic                            = "Synthetic"
	attrSignature                            = "Signature"
	attrSourceFile                           = "SourceFile"
	attrSourceDebugExtension                 = "SourceDebugExtension"
	attrLineNumberTable                      = "LineNumberTable"
	attrLocalVariableTable                   = "LocalVariableTable"
	attrLocalVariableTypeTable               = "LocalVariableTypeTable"
	attrDeprecated                           = "Deprecated"
	attrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	attrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	attrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	attrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	attrRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	attrRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	attrAnnotationDefault                    = "AnnotationDefault"
	attrBootstrapMethods                     = "BootstrapMethods"
	attrMethodParameters                     = "MethodParameters"
	attrModule                               = "Module"
	attrModulePackages                       = "ModulePackages"
	attrModuleMainClass                      = "ModuleMainClass"
	attrNestHost                             = "NestHost"
	attrNestMembers                          = "NestMembers"
	attrRecord                               = "Record"
	attrPermittedSubclasses                  = "PermittedSubclasses"
)

// Method handle reference kinds (JVMS 4.4.8).
const (
	RefGetField         byte = 1
	RefGetStatic        byte = 2
	RefPutField         byte = 3
	RefPutStatic        byte = 4
	RefInvokeVirtual    byte = 5
	RefInvokeStatic     byte = 6
	RefInvokeSpecial    byte = 7
	RefNewInvokeSpecial byte = 8
	RefInvokeInterface  byte = 9
)

// Opcodes referenced by name in the codec. The full mnemonic table lives
// in opNames; only opcodes whose operand layout the codec must know get a
// named constant.
const (
	OpNop             byte = 0x00
	OpAconstNull      byte = 0x01
	OpBipush          byte = 0x10
	OpSipush          byte = 0x11
	OpLdc             byte = 0x12
	OpLdcW            byte = 0x13
	OpLdc2W           byte = 0x14
	OpIload           byte = 0x15
	OpLload           byte = 0x16
	OpFload           byte = 0x17
	OpDload           byte = 0x18
	OpAload           byte = 0x19
	OpIstore          byte = 0x36
	OpLstore          byte = 0x37
	OpFstore          byte = 0x38
	OpDstore          byte = 0x39
	OpAstore          byte = 0x3A
	OpIinc            byte = 0x84
	OpIfeq            byte = 0x99
	OpIfne            byte = 0x9A
	OpIflt            byte = 0x9B
	OpIfge            byte = 0x9C
	OpIfgt            byte = 0x9D
	OpIfle            byte = 0x9E
	OpIfIcmpeq        byte = 0x9F
	OpIfIcmpne        byte = 0xA0
	OpIfIcmplt        byte = 0xA1
	OpIfIcmpge        byte = 0xA2
	OpIfIcmpgt        byte = 0xA3
	OpIfIcmple        byte = 0xA4
	OpIfAcmpeq        byte = 0xA5
	OpIfAcmpne        byte = 0xA6
	OpGoto            byte = 0xA7
	OpJsr             byte = 0xA8
	OpRet             byte = 0xA9
	OpTableswitch     byte = 0xAA
	OpLookupswitch    byte = 0xAB
	OpIreturn         byte = 0xAC
	OpReturn          byte = 0xB1
	OpGetstatic       byte = 0xB2
	OpPutstatic       byte = 0xB3
	OpGetfield        byte = 0xB4
	OpPutfield        byte = 0xB5
	OpInvokevirtual   byte = 0xB6
	OpInvokespecial   byte = 0xB7
	OpInvokestatic    byte = 0xB8
	OpInvokeinterface byte = 0xB9
	OpInvokedynamic   byte = 0xBA
	OpNew             byte = 0xBB
	OpNewarray        byte = 0xBC
	OpAnewarray       byte = 0xBD
	OpAthrow          byte = 0xBF
	OpCheckcast       byte = 0xC0
	OpInstanceof      byte = 0xC1
	OpWide            byte = 0xC4
	OpMultianewarray  byte = 0xC5
	OpIfnull          byte = 0xC6
	OpIfnonnull       byte = 0xC7
	OpGotoW           byte = 0xC8
	OpJsrW            byte = 0xC9
)

// opNames maps every defined opcode to its mnemonic.
var opNames = [256]string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2",
	"iconst_3", "iconst_4", "iconst_5", "lconst_0", "lconst_1", "fconst_0",
	"fconst_1", "fconst_2", "dconst_0", "dconst_1", "bipush", "sipush",
	"ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload", "dload", "aload",
	"iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1",
	"lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3",
	"dload_0", "dload_1", "dload_2", "dload_3", "aload_0", "aload_1",
	"aload_2", "aload_3", "iaload", "laload", "faload", "daload", "aaload",
	"baload", "caload", "saload", "istore", "lstore", "fstore", "dstore",
	"astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0",
	"lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2",
	"fstore_3", "dstore_0", "dstore_1", "dstore_2", "dstore_3", "astore_0",
	"astore_1", "astore_2", "astore_3", "iastore", "lastore", "fastore",
	"dastore", "aastore", "bastore", "castore", "sastore", "pop", "pop2",
	"dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
	"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub", "imul",
	"lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv", "irem", "lrem",
	"frem", "drem", "ineg", "lneg", "fneg", "dneg", "ishl", "lshl", "ishr",
	"lshr", "iushr", "lushr", "iand", "land", "ior", "lor", "ixor", "lxor",
	"iinc", "i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d",
	"d2i", "d2l", "d2f", "i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg",
	"dcmpl", "dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle",
	"if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt",
	"if_icmple", "if_acmpeq", "if_acmpne", "goto", "jsr", "ret",
	"tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn",
	"dreturn", "areturn", "return", "getstatic", "putstatic", "getfield",
	"putfield", "invokevirtual", "invokespecial", "invokestatic",
	"invokeinterface", "invokedynamic", "new", "newarray", "anewarray",
	"arraylength", "athrow", "checkcast", "instanceof", "monitorenter",
	"monitorexit", "wide", "multianewarray", "ifnull", "ifnonnull",
	"goto_w", "jsr_w",
}

// OpName returns the mnemonic for an opcode, or "unknown" for undefined ones.
func OpName(op byte) string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "unknown"
}
