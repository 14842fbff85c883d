package compiler

import (
	"errors"
	"regexp/syntax"
	"sort"
	"strings"

	"github.com/KromDaniel/regtag/internal/warn"
)

// AnalysisResult contains the results of pattern analysis without code generation.
type AnalysisResult struct {
	// FeatureLabels are derived from pattern structure (sorted alphabetically)
	FeatureLabels []string `json:"feature_labels"`

	HasCaptures  bool `json:"has_captures"`
	HasEndAnchor bool `json:"has_end_anchor"`
	NFAStates    int  `json:"nfa_states"`

	// Supported is false when the pattern uses an assertion the TDFA cannot
	// express or exceeds the state threshold; Reason says which.
	Supported bool      `json:"supported"`
	Reason    string    `json:"reason,omitempty"`
	TDFA      TDFAStats `json:"tdfa"`

	// Warnings names the -W warnings the pattern would raise.
	Warnings []string `json:"warnings,omitempty"`
}

// TDFAStats describes a constructed automaton and its command indexes.
type TDFAStats struct {
	States    int `json:"states"`
	Registers int `json:"registers"`
	Blocks    int `json:"blocks"`
	SaveLists int `json:"save_lists"`
	CopyLists int `json:"copy_lists"`
	Ranges    int `json:"ranges"`
}

// Stats summarizes p.
func (p *Program) Stats() TDFAStats {
	return TDFAStats{
		States:    len(p.States),
		Registers: p.NumRegs,
		Blocks:    len(p.CFG.Blocks),
		SaveLists: p.Indices.Saves.Len(),
		CopyLists: p.Indices.Copies.Len(),
		Ranges:    p.Ranges,
	}
}

// AnalyzePattern performs pattern analysis and returns labels without generating code.
// It returns an error if the pattern is invalid; a pattern the TDFA cannot
// handle is reported through Supported instead.
func AnalyzePattern(pattern string, tdfaThreshold int) (*AnalysisResult, error) {
	regexAST, prog, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		FeatureLabels: deriveFeatureLabels(pattern, prog, regexAST),
		HasCaptures:   prog.NumCap > 2,
		HasEndAnchor:  hasEndAnchor(prog),
		NFAStates:     len(prog.Inst),
		Supported:     true,
	}

	program, err := buildProgram(pattern, regexAST, prog, tdfaThreshold, nil)
	switch {
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrTooManyStates):
		result.Supported = false
		result.Reason = err.Error()
	case err != nil:
		return nil, err
	default:
		result.TDFA = program.Stats()
	}

	if hasEmptyClass(regexAST) {
		result.Warnings = append(result.Warnings, warn.EmptyCharacterClass.String())
	}
	if program != nil && program.MatchString("") {
		result.Warnings = append(result.Warnings, warn.MatchEmptyString.String())
	}
	if canMatchNonASCII(prog) {
		result.Warnings = append(result.Warnings, warn.NonASCII.String())
	}

	return result, nil
}

// deriveFeatureLabels extracts feature labels from the pattern structure.
// Labels are sorted alphabetically.
func deriveFeatureLabels(pattern string, prog *syntax.Prog, ast *syntax.Regexp) []string {
	var labels []string

	// Anchored: pattern uses ^ or $
	if isAnchored(prog) || hasEndAnchor(prog) {
		labels = append(labels, "Anchored")
	}

	// Alternation: pattern contains | (check AST for OpAlternate)
	if hasAlternation(ast) {
		labels = append(labels, "Alternation")
	}

	// Captures: pattern has capture groups
	if prog.NumCap > 2 {
		labels = append(labels, "Captures")
	}

	// CharClass: pattern contains [...] or \d, \w, \s, etc.
	if hasCharClass(pattern, ast) {
		labels = append(labels, "CharClass")
	}

	// EmptyClass: a class that can never match
	if hasEmptyClass(ast) {
		labels = append(labels, "EmptyClass")
	}

	// Multibyte: pattern contains non-ASCII characters
	if hasMultibyte(pattern) {
		labels = append(labels, "Multibyte")
	}

	// NonCapturing: pattern contains (?:...)
	if strings.Contains(pattern, "(?:") {
		labels = append(labels, "NonCapturing")
	}

	// Quantifiers: pattern uses +, *, ?, {n,m}
	if hasQuantifiers(ast) {
		labels = append(labels, "Quantifiers")
	}

	// RepeatingCaptures: only the last iteration is reported
	if hasRepeatingCaptures(ast) {
		labels = append(labels, "RepeatingCaptures")
	}

	// WordBoundary: pattern uses \b or \B
	if hasWordBoundary(prog) {
		labels = append(labels, "WordBoundary")
	}

	// Simple: no special features
	if len(labels) == 0 {
		labels = append(labels, "Simple")
	}

	sort.Strings(labels)
	return labels
}

// hasEndAnchor reports whether the program asserts end of text.
func hasEndAnchor(prog *syntax.Prog) bool {
	for _, inst := range prog.Inst {
		if inst.Op == syntax.InstEmptyWidth && syntax.EmptyOp(inst.Arg)&syntax.EmptyEndText != 0 {
			return true
		}
	}
	return false
}

// hasWordBoundary reports whether the program uses \b or \B.
func hasWordBoundary(prog *syntax.Prog) bool {
	for _, inst := range prog.Inst {
		if inst.Op == syntax.InstEmptyWidth &&
			syntax.EmptyOp(inst.Arg)&(syntax.EmptyWordBoundary|syntax.EmptyNoWordBoundary) != 0 {
			return true
		}
	}
	return false
}

// hasAlternation checks if the AST contains alternation (|).
func hasAlternation(re *syntax.Regexp) bool {
	if re == nil {
		return false
	}
	if re.Op == syntax.OpAlternate {
		return true
	}
	for _, sub := range re.Sub {
		if hasAlternation(sub) {
			return true
		}
	}
	return false
}

// hasCharClass checks if the pattern uses character classes.
func hasCharClass(pattern string, ast *syntax.Regexp) bool {
	if strings.ContainsAny(pattern, "[]") {
		return true
	}
	for _, esc := range []string{`\d`, `\D`, `\w`, `\W`, `\s`, `\S`} {
		if strings.Contains(pattern, esc) {
			return true
		}
	}
	return hasCharClassInAST(ast)
}

// hasCharClassInAST checks if the AST contains character class operations.
func hasCharClassInAST(re *syntax.Regexp) bool {
	if re == nil {
		return false
	}
	if re.Op == syntax.OpCharClass || re.Op == syntax.OpAnyCharNotNL || re.Op == syntax.OpAnyChar {
		return true
	}
	for _, sub := range re.Sub {
		if hasCharClassInAST(sub) {
			return true
		}
	}
	return false
}

// hasMultibyte checks if the pattern contains non-ASCII characters.
func hasMultibyte(pattern string) bool {
	for _, r := range pattern {
		if r >= MaxASCIIRune {
			return true
		}
	}
	return false
}

// hasQuantifiers checks if the AST contains quantifier operations.
func hasQuantifiers(re *syntax.Regexp) bool {
	if re == nil {
		return false
	}
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		return true
	}
	for _, sub := range re.Sub {
		if hasQuantifiers(sub) {
			return true
		}
	}
	return false
}
