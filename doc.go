// Package classfilekit provides a lossless codec and streaming traversal
// framework for the JVM class-file format.
//
// The library reads a compiled class from its binary form into a structured
// representation (constant pool, fields, methods, bytecode, attributes),
// writes that representation back bit-for-bit, and lets a consumer stream
// through a class selectively without materializing the full tree.
//
// # Architecture Overview
//
// The library is organized into a small number of packages with distinct
// responsibilities:
//
//	classfilekit/        Root package with repository documentation
//	├── classfile/       Class-file parsing, encoding, and the visitor protocol
//	├── mutf8/           JVM modified UTF-8 text codec
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Parse a class and materialize the full tree:
//
//	data, _ := os.ReadFile("Example.class")
//	cf, err := classfile.ReadClass(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cf.Name, len(cf.Methods))
//
// Write it back:
//
//	out, err := classfile.WriteClass(cf)
//
// Stream through a class with a custom visitor, skipping what you do not
// need:
//
//	err := classfile.Accept(data, myVisitor)
//
// A visitor declares up front, via its Interests, which optional attributes
// the reader should parse at all; everything else is skipped at the byte
// level. Returning a nil child visitor from any Visit* call skips that
// subtree entirely.
//
// # Thread Safety
//
// All state (constant pool, label tables, visitors) is created fresh per
// read or write call and never shared. Reading many classes concurrently is
// safe as long as each call gets its own byte slice and visitor.
package classfilekit
