package regtag

import (
	"github.com/KromDaniel/regtag/internal/compiler"
)

// AnalysisResult contains the results of pattern analysis without code generation.
type AnalysisResult = compiler.AnalysisResult

// TDFAStats summarizes the automaton and its command indices.
type TDFAStats = compiler.TDFAStats

// Analyze performs pattern analysis without generating code.
// It returns an error only when the pattern does not parse; patterns the
// automaton cannot represent report Supported=false with a Reason.
//
// Example:
//
//	result, err := regtag.Analyze(`(?P<name>\w+)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.FeatureLabels)   // ["Captures", "CharClass", "Quantifiers"]
//	fmt.Println(result.TDFA.SaveLists) // distinct save lists after indexing
func Analyze(pattern string) (*AnalysisResult, error) {
	return AnalyzeWithThreshold(pattern, compiler.DefaultTDFAThreshold)
}

// AnalyzeWithThreshold performs pattern analysis with a custom TDFA state threshold.
func AnalyzeWithThreshold(pattern string, tdfaThreshold int) (*AnalysisResult, error) {
	return compiler.AnalyzePattern(pattern, tdfaThreshold)
}
