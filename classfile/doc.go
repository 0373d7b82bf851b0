// Package classfile provides JVM class-file parsing and encoding.
//
// This package implements a complete reader and writer for the class file
// format defined by the Java Virtual Machine Specification, chapter 4,
// covering major versions 45 through 69 (JDK 1.1 through 25).
//
// # Parsing
//
// Parse a class from its bytes into a materialized tree:
//
//	data, _ := os.ReadFile("Example.class")
//	class, err := classfile.ReadClass(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or stream it through a visitor without building a tree:
//
//	err := classfile.Accept(data, myVisitor)
//
// A visitor declares up front, through Interests, which optional payloads
// it wants decoded; everything else is skipped at the byte level. Methods
// that open a subtree (VisitField, VisitMethod, VisitCode, ...) may
// return nil to skip that subtree entirely.
//
// # Encoding
//
// Encode a tree back to bytes:
//
//	out, err := classfile.WriteClass(class)
//
// The constant pool is rebuilt from scratch on every write: entries are
// interned by structural equality in first-use order. Pool indices never
// appear in the tree; constants are carried as values and branch targets
// as opaque Labels, so trees can be transformed freely and re-encoded.
//
// Round-trip parsing and encoding preserves class semantics:
//
//	original, _ := classfile.ReadClass(data)
//	out, _ := classfile.WriteClass(original)
//	// out loads identically; pools may differ where the input held
//	// duplicate or unreferenced entries
//
// # Class Structure
//
// A parsed class exposes every interpreted attribute as typed fields:
//
//	class.Version         Version          // format version pair
//	class.Access          AccessFlags      // class access and property flags
//	class.Fields          []Field          // field_info records
//	class.Methods         []Method         // method_info records, bodies in Method.Code
//	class.BootstrapMethods []BootstrapMethod
//	class.Attrs           []Attribute      // uninterpreted attributes, verbatim
//
// Attributes the codec does not interpret ride through Attrs byte for
// byte, so classes carrying tooling-specific attributes survive a
// round trip. StackMapTable payloads are carried verbatim on Code and
// stay valid as long as re-encoding does not move any instruction.
//
// # Labels
//
// Positions inside a method body are Labels, not byte offsets. The reader
// hands out one Label per bytecode position on demand and the writer
// assigns offsets during layout, widening goto and jsr to their _w forms
// when a branch outgrows a 16-bit offset. Conditional branches have no
// wide form; a conditional branch that cannot reach its target is an
// encoding error.
//
// # Errors
//
// All errors are structured *errors.Error values carrying a phase
// (decode, encode, resolve, validate), a kind (truncated, malformed
// encoding, invalid reference, unknown tag, overflow), and a path of
// context frames down to the failing construct.
//
// # Thread Safety
//
// The package has no shared mutable state. Each read or write call owns
// its pool and label tables exclusively; distinct classes may be
// processed concurrently without locking. Individual trees and visitors
// are not safe for concurrent use.
package classfile
