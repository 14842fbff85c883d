// Package warn collects user-facing compiler warnings. Each warning type can
// be enabled, disabled or promoted to an error independently.
package warn

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Type is a warning category.
type Type int

const (
	EmptyCharacterClass Type = iota
	MatchEmptyString
	NonASCII

	numTypes
)

var names = [numTypes]string{
	EmptyCharacterClass: "empty-character-class",
	MatchEmptyString:    "match-empty-string",
	NonASCII:            "non-ascii",
}

func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return fmt.Sprintf("warning(%d)", int(t))
	}
	return names[t]
}

// Types returns all warning types.
func Types() []Type {
	ts := make([]Type, numTypes)
	for i := range ts {
		ts[i] = Type(i)
	}
	return ts
}

// Option changes how a warning type is reported.
type Option int

const (
	W        Option = iota // report
	WNo                    // do not report
	WError                 // report and fail the compilation
	WNoError               // report without failing
	WErrorOnly             // fail if reported, without enabling
)

const (
	warning uint8 = 1 << 0
	errbit  uint8 = 1 << 1
)

// Warn reports warnings to a writer and remembers whether any warning was
// promoted to an error. All warnings are silent by default. Reporting is
// safe for concurrent use; configuration is not.
type Warn struct {
	mu     sync.Mutex
	mask   [numTypes]uint8
	counts [numTypes]int
	failed bool
	out    io.Writer
	prefix string
}

// New returns a Warn writing to out (stderr when nil).
func New(out io.Writer) *Warn {
	if out == nil {
		out = os.Stderr
	}
	return &Warn{out: out, prefix: "regtag"}
}

// SetPrefix sets the text printed before each message.
func (w *Warn) SetPrefix(p string) { w.prefix = p }

// Set applies o to warning type t.
func (w *Warn) Set(t Type, o Option) {
	switch o {
	case W:
		w.mask[t] |= warning
	case WNo:
		w.mask[t] &^= warning
	case WError:
		w.mask[t] |= warning | errbit
	case WNoError:
		w.mask[t] &^= errbit
	case WErrorOnly:
		w.mask[t] |= errbit
	}
}

// SetAll applies o to every warning type.
func (w *Warn) SetAll(o Option) {
	for t := Type(0); t < numTypes; t++ {
		w.Set(t, o)
	}
}

// Enabled reports whether t is reported.
func (w *Warn) Enabled(t Type) bool {
	return w.mask[t]&warning != 0
}

// Error reports whether a warning promoted to an error has been raised.
func (w *Warn) Error() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failed
}

// Count returns how many times t has been reported.
func (w *Warn) Count(t Type) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[t]
}

// Total returns the number of reported warnings of all types.
func (w *Warn) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.counts {
		n += c
	}
	return n
}

// EmptyClass reports a character class that matches nothing.
func (w *Warn) EmptyClass(pattern string) {
	w.report(EmptyCharacterClass, "pattern %q contains an empty character class", pattern)
}

// MatchEmpty reports a pattern that matches the empty string.
func (w *Warn) MatchEmpty(pattern string) {
	w.report(MatchEmptyString, "pattern %q can match the empty string", pattern)
}

// NonASCIIRunes reports a pattern whose non-ASCII runes are unreachable
// from the byte-level matcher.
func (w *Warn) NonASCIIRunes(pattern string) {
	w.report(NonASCII, "pattern %q can match non-ASCII input, which the generated matcher rejects", pattern)
}

func (w *Warn) report(t Type, format string, args ...any) {
	m := w.mask[t]
	if m&warning == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[t]++
	kind := "warning"
	if m&errbit != 0 {
		w.failed = true
		kind = "error"
	}
	fmt.Fprintf(w.out, "%s: %s: %s [-W%s]\n", w.prefix, kind, fmt.Sprintf(format, args...), names[t])
}

// Apply parses one flag value and applies it. Accepted forms:
//
//	all, no-all, error, no-error
//	<name>, no-<name>, error=<name>, no-error=<name>
func (w *Warn) Apply(flag string) error {
	flag = strings.TrimSpace(flag)
	switch flag {
	case "all":
		w.SetAll(W)
		return nil
	case "no-all":
		w.SetAll(WNo)
		return nil
	case "error":
		// holds for warnings enabled later too
		w.SetAll(WErrorOnly)
		return nil
	case "no-error":
		w.SetAll(WNoError)
		return nil
	}

	opt := W
	name := flag
	switch {
	case strings.HasPrefix(flag, "no-error="):
		opt, name = WNoError, strings.TrimPrefix(flag, "no-error=")
	case strings.HasPrefix(flag, "error="):
		opt, name = WError, strings.TrimPrefix(flag, "error=")
	case strings.HasPrefix(flag, "no-"):
		opt, name = WNo, strings.TrimPrefix(flag, "no-")
	}

	t, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown warning %q", name)
	}
	w.Set(t, opt)
	return nil
}

// ApplyAll applies flags in order.
func (w *Warn) ApplyAll(flags []string) error {
	for _, f := range flags {
		if err := w.Apply(f); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the warning type with the given name.
func Lookup(name string) (Type, bool) {
	for t, n := range names {
		if n == name {
			return Type(t), true
		}
	}
	return 0, false
}
