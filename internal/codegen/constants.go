// Package codegen provides code generation helpers and constants.
package codegen

import (
	"fmt"
	"strconv"
)

// Variable names used in generated code
const (
	InputName = "input"
	RegsName  = "regs"
	StateName = "state"
	StartName = "start"
	EndName   = "end"
	PosName   = "pos"
	ByteName  = "c"
	MatchName = "m"
)

// ApplySaveName returns the name of the function executing save lists.
func ApplySaveName(name string) string {
	return fmt.Sprintf("apply%sSave", UpperFirst(name))
}

// ApplyCopyName returns the name of the function executing copy lists.
func ApplyCopyName(name string) string {
	return fmt.Sprintf("apply%sCopy", UpperFirst(name))
}

// HelperName returns the name of an unexported helper of a generated type.
func HelperName(prefix, suffix string) string {
	return LowerFirst(prefix) + suffix
}

// FieldNames returns the result struct field name of every capture group
// after the whole match. Named groups keep their name, others become
// GroupN, and clashes get the group number appended.
func FieldNames(captureNames []string) []string {
	seen := map[string]bool{"Match": true}
	fields := make([]string, 0, len(captureNames))
	for i := 1; i < len(captureNames); i++ {
		name := captureNames[i]
		switch {
		case name == "":
			name = "Group" + strconv.Itoa(i)
		case !isLetter(name[0]):
			name = "Group" + name
		default:
			name = UpperFirst(name)
		}
		if seen[name] {
			name += strconv.Itoa(i)
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}
