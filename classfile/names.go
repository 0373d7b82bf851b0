package classfile

import (
	"strconv"
	"strings"

	"github.com/wippyai/classfile-kit/errors"
)

// ClassName is a binary class or interface name in internal form, with
// slashes separating package segments ("java/lang/Object"), or an array
// descriptor ("[Ljava/lang/String;").
type ClassName string

// FieldDescriptor is a field type descriptor ("I", "[J",
// "Ljava/lang/String;").
type FieldDescriptor string

// MethodDescriptor is a method type descriptor ("(ILjava/lang/String;)V").
type MethodDescriptor string

// NewClassName validates s as a binary class name or array descriptor.
func NewClassName(s string) (ClassName, error) {
	if s == "" {
		return "", errors.InvalidName("class name", s, "empty")
	}
	if s[0] == '[' {
		if _, err := NewFieldDescriptor(s); err != nil {
			return "", errors.InvalidName("class name", s, "invalid array descriptor")
		}
		return ClassName(s), nil
	}
	for _, seg := range strings.Split(s, "/") {
		if !validUnqualifiedName(seg, false) {
			return "", errors.InvalidName("class name", s, "invalid segment "+strconv.Quote(seg))
		}
	}
	return ClassName(s), nil
}

// NewFieldDescriptor validates s as a field descriptor.
func NewFieldDescriptor(s string) (FieldDescriptor, error) {
	rest, ok := consumeFieldType(s)
	if !ok || rest != "" {
		return "", errors.InvalidName("field descriptor", s, "malformed type")
	}
	return FieldDescriptor(s), nil
}

// NewMethodDescriptor validates s as a method descriptor.
func NewMethodDescriptor(s string) (MethodDescriptor, error) {
	if len(s) < 3 || s[0] != '(' {
		return "", errors.InvalidName("method descriptor", s, "missing parameter list")
	}
	rest := s[1:]
	for len(rest) > 0 && rest[0] != ')' {
		var ok bool
		rest, ok = consumeFieldType(rest)
		if !ok {
			return "", errors.InvalidName("method descriptor", s, "malformed parameter type")
		}
	}
	if len(rest) == 0 || rest[0] != ')' {
		return "", errors.InvalidName("method descriptor", s, "unterminated parameter list")
	}
	ret := rest[1:]
	if ret == "V" {
		return MethodDescriptor(s), nil
	}
	tail, ok := consumeFieldType(ret)
	if !ok || tail != "" {
		return "", errors.InvalidName("method descriptor", s, "malformed return type")
	}
	return MethodDescriptor(s), nil
}

// NewMemberName validates s as an unqualified field or method name.
// The special method names <init> and <clinit> are accepted.
func NewMemberName(s string) (string, error) {
	if s == "<init>" || s == "<clinit>" {
		return s, nil
	}
	if !validUnqualifiedName(s, true) {
		return "", errors.InvalidName("member name", s, "invalid character")
	}
	return s, nil
}

// consumeFieldType consumes one field type from the front of s, returning
// the remainder.
func consumeFieldType(s string) (rest string, ok bool) {
	for len(s) > 0 && s[0] == '[' {
		s = s[1:]
	}
	if len(s) == 0 {
		return "", false
	}
	switch s[0] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return s[1:], true
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 2 {
			return "", false
		}
		for _, seg := range strings.Split(s[1:end], "/") {
			if !validUnqualifiedName(seg, false) {
				return "", false
			}
		}
		return s[end+1:], true
	}
	return "", false
}

// validUnqualifiedName applies the JVM unqualified-name rules: nonempty
// and free of '.', ';', '[' and '/'. Member names additionally exclude
// '<' and '>'.
func validUnqualifiedName(s string, member bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', ';', '[', '/':
			return false
		case '<', '>':
			if member {
				return false
			}
		}
	}
	return true
}
