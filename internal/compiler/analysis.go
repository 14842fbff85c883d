package compiler

import (
	"fmt"
	"regexp/syntax"
	"unicode"
)

// ParsePattern parses pattern with Perl syntax, simplifies it and compiles
// it to an instruction program.
func ParsePattern(pattern string) (*syntax.Regexp, *syntax.Prog, error) {
	regexAST, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	simplified := regexAST.Simplify()

	prog, err := syntax.Compile(simplified)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile pattern: %w", err)
	}
	return regexAST, prog, nil
}

// extractCaptureNames extracts capture group names from the regex AST,
// indexed by group number.
func extractCaptureNames(re *syntax.Regexp) []string {
	names := make([]string, re.MaxCap()+1) // Group 0 is always the full match (unnamed)

	var walk func(*syntax.Regexp)
	walk = func(r *syntax.Regexp) {
		if r.Op == syntax.OpCapture {
			names[r.Cap] = r.Name
		}
		for _, sub := range r.Sub {
			walk(sub)
		}
	}

	walk(re)
	return names
}

// hasRepeatingCaptures checks if the regex has any capture groups in repeating context.
// Repeating contexts include *, +, ?, and {n,m} quantifiers.
// Only the last iteration of a repeated group is reported, as in the stdlib.
func hasRepeatingCaptures(re *syntax.Regexp) bool {
	return walkCheckRepeating(re, false)
}

// walkCheckRepeating recursively walks the AST to detect captures in repeating context.
func walkCheckRepeating(re *syntax.Regexp, inRepeat bool) bool {
	if re.Op == syntax.OpCapture && inRepeat {
		return true
	}

	isRepeating := false
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		isRepeating = true
	}

	for _, sub := range re.Sub {
		if walkCheckRepeating(sub, inRepeat || isRepeating) {
			return true
		}
	}

	return false
}

// isAnchored checks if the regex is anchored to the start of text.
func isAnchored(prog *syntax.Prog) bool {
	if prog == nil || len(prog.Inst) == 0 {
		return false
	}
	startInst := prog.Inst[prog.Start]
	return startInst.Op == syntax.InstEmptyWidth && syntax.EmptyOp(startInst.Arg)&syntax.EmptyBeginText != 0
}

// hasEmptyClass reports whether the AST contains a character class that
// can never match.
func hasEmptyClass(re *syntax.Regexp) bool {
	if re == nil {
		return false
	}
	if re.Op == syntax.OpNoMatch || (re.Op == syntax.OpCharClass && len(re.Rune) == 0) {
		return true
	}
	for _, sub := range re.Sub {
		if hasEmptyClass(sub) {
			return true
		}
	}
	return false
}

// canMatchNonASCII reports whether some rune instruction accepts a rune
// outside the TDFA byte alphabet.
func canMatchNonASCII(prog *syntax.Prog) bool {
	for _, inst := range prog.Inst {
		switch inst.Op {
		case syntax.InstRuneAny, syntax.InstRuneAnyNotNL:
			return true
		case syntax.InstRune, syntax.InstRune1:
			for i := 1; i < len(inst.Rune); i += 2 {
				if inst.Rune[i] >= MaxASCIIRune {
					return true
				}
			}
			if len(inst.Rune) == 1 && inst.Rune[0] >= MaxASCIIRune {
				return true
			}
			if syntax.Flags(inst.Arg)&syntax.FoldCase != 0 && foldsOutsideASCII(inst.Rune) {
				return true
			}
		}
	}
	return false
}

// foldsOutsideASCII reports whether a case-folded rune set reaches a
// non-ASCII rune, as (?i)k reaches U+212A KELVIN SIGN.
func foldsOutsideASCII(runes []rune) bool {
	if len(runes) == 1 {
		return orbitLeavesASCII(runes[0])
	}
	for i := 0; i+1 < len(runes); i += 2 {
		for r := runes[i]; r <= runes[i+1] && r < MaxASCIIRune; r++ {
			if orbitLeavesASCII(r) {
				return true
			}
		}
	}
	return false
}

func orbitLeavesASCII(r rune) bool {
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f >= MaxASCIIRune {
			return true
		}
	}
	return false
}
