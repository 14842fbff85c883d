package compiler

import (
	"fmt"
	"io"
	"regexp/syntax"
	"strconv"
	"unicode/utf8"

	"github.com/KromDaniel/regtag/internal/tags"
)

// Program is a compiled Tagged DFA with indexed command blocks. It can be
// executed directly or handed to the code generator.
type Program struct {
	Pattern      string
	NumCap       int // capture groups including the whole match
	NumRegs      int // registers referenced by commands, including unset
	CaptureNames []string

	States     []*TDFAState
	StartBegin int // start state at offset 0, -1 if the pattern cannot match there
	StartAny   int // start state at later offsets, -1 if none
	InitBegin  *tags.Block
	InitAny    *tags.Block

	CFG     *tags.CFG
	Indices *tags.Indices
	Ranges  int // total byte ranges after tunnelling
}

// CompileProgram parses pattern and builds its Program.
func CompileProgram(pattern string, maxStates int, logger *Logger) (*Program, error) {
	regexAST, prog, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return buildProgram(pattern, regexAST, prog, maxStates, logger)
}

func buildProgram(pattern string, regexAST *syntax.Regexp, prog *syntax.Prog, maxStates int, logger *Logger) (*Program, error) {
	if logger == nil {
		logger = NewLogger(false)
	}

	logger.Section("TDFA Construction")
	gen := NewTDFAGenerator(prog, maxStates, logger)
	if err := gen.Build(); err != nil {
		return nil, err
	}

	logger.Section("Tag Indexing")
	ix := tags.IndexCFG(gen.cfg)
	ss, cs := ix.Saves.Stats(), ix.Copies.Stats()
	logger.Log("%d blocks -> %d save lists, %d copy lists", len(gen.cfg.Blocks), ix.Saves.Len(), ix.Copies.Len())
	logger.Log("save index: %d lookups, %d hits, %d collisions", ss.Lookups, ss.Hits, ss.Collisions)
	logger.Log("copy index: %d lookups, %d hits, %d collisions", cs.Lookups, cs.Hits, cs.Collisions)

	ranges := tunnel(gen.states)
	logger.Log("tunnelled %d transitions into %d ranges", countTransitions(gen.states), ranges)

	names := make([]string, prog.NumCap/2)
	if regexAST != nil {
		names = extractCaptureNames(regexAST)
	}

	return &Program{
		Pattern:      pattern,
		NumCap:       prog.NumCap / 2,
		NumRegs:      int(gen.nextReg),
		CaptureNames: names,
		States:       gen.states,
		StartBegin:   gen.startBegin,
		StartAny:     gen.startAny,
		InitBegin:    gen.initBegin,
		InitAny:      gen.initAny,
		CFG:          gen.cfg,
		Indices:      ix,
		Ranges:       ranges,
	}, nil
}

func countTransitions(states []*TDFAState) int {
	n := 0
	for _, s := range states {
		for _, next := range s.Trans {
			if next >= 0 {
				n++
			}
		}
	}
	return n
}

// machine holds the registers of one execution.
type machine struct {
	regs    []int
	scratch []int
}

func (p *Program) newMachine() *machine {
	return &machine{
		regs:    make([]int, p.NumRegs),
		scratch: make([]int, p.NumRegs),
	}
}

// apply runs blk at pos: copies first, as one parallel assignment, then
// saves.
func (m *machine) apply(blk *tags.Block, pos int) {
	if blk == nil {
		return
	}
	copies := blk.CopyList
	for i := range copies.Len() {
		m.scratch[i] = m.regs[copies.At(i).Src]
	}
	for i := range copies.Len() {
		m.regs[copies.At(i).Dst] = m.scratch[i]
	}
	for s := range blk.SaveList.All() {
		m.regs[s.Slot] = pos
	}
}

// exec runs one match attempt anchored at start and returns the end of
// the highest priority match, or -1.
func (p *Program) exec(m *machine, input string, start int) int {
	for i := range m.regs {
		m.regs[i] = -1
	}

	state, init := p.StartAny, p.InitAny
	if start == 0 {
		state, init = p.StartBegin, p.InitBegin
	}
	if state < 0 {
		return -1
	}
	m.apply(init, start)

	end := -1
	s := p.States[state]
	if s.Accept {
		m.apply(s.AcceptBlock, start)
		end = start
	}
	for i := start; i < len(input); i++ {
		c := input[i]
		if c >= MaxASCIIRune || s.Trans[c] < 0 {
			return end
		}
		m.apply(s.Blocks[c], i+1)
		s = p.States[s.Trans[c]]
		if s.Accept {
			m.apply(s.AcceptBlock, i+1)
			end = i + 1
		}
	}

	// the whole remaining input was consumed
	if s.EOTBlock != nil {
		m.apply(s.EOTBlock, len(input))
		end = len(input)
	}
	return end
}

// FindSubmatchIndex returns the leftmost match of p in input in the
// layout of regexp.Regexp.FindStringSubmatchIndex, or nil.
func (p *Program) FindSubmatchIndex(input string) []int {
	return p.FindSubmatchIndexFrom(input, 0)
}

// FindSubmatchIndexFrom is FindSubmatchIndex with the search starting at
// from. Text anchors still refer to the whole input.
func (p *Program) FindSubmatchIndexFrom(input string, from int) []int {
	m := p.newMachine()
	for start := from; start <= len(input); start++ {
		if start > 0 && p.StartAny < 0 {
			break
		}
		end := p.exec(m, input, start)
		if end < 0 {
			continue
		}
		return p.result(m, start, end)
	}
	return nil
}

func (p *Program) result(m *machine, start, end int) []int {
	out := make([]int, 2*p.NumCap)
	out[0], out[1] = start, end
	for g := 1; g < p.NumCap; g++ {
		lo := m.regs[OutputSlot(2*g)]
		hi := m.regs[OutputSlot(2*g+1)]
		if lo < 0 || hi < 0 {
			lo, hi = -1, -1
		}
		out[2*g], out[2*g+1] = lo, hi
	}
	return out
}

// MatchString reports whether input contains a match of p.
func (p *Program) MatchString(input string) bool {
	return p.FindSubmatchIndex(input) != nil
}

// FindAllSubmatchIndex returns up to n successive matches, all if n < 0.
// An empty match directly after a previous match is skipped, as in the
// regexp package.
func (p *Program) FindAllSubmatchIndex(input string, n int) [][]int {
	if n < 0 {
		n = len(input) + 1
	}
	var out [][]int
	prevEnd := -1
	for pos := 0; len(out) < n && pos <= len(input); {
		loc := p.FindSubmatchIndexFrom(input, pos)
		if loc == nil {
			break
		}
		accept := true
		if loc[1] == pos {
			if loc[0] == prevEnd {
				accept = false
			}
			if pos < len(input) {
				_, width := utf8.DecodeRuneInString(input[pos:])
				pos += width
			} else {
				pos++
			}
		} else {
			pos = loc[1]
		}
		prevEnd = loc[1]
		if accept {
			out = append(out, loc)
		}
	}
	return out
}

// Dump writes a readable listing of the automaton and its indexes.
func (p *Program) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "pattern: %q\ncaptures: %d registers: %d\nstates: %d start: %d start-any: %d\n",
		p.Pattern, p.NumCap, p.NumRegs, len(p.States), p.StartBegin, p.StartAny); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "init: %s\ninit-any: %s\n", blockRef(p.InitBegin), blockRef(p.InitAny)); err != nil {
		return err
	}
	for _, s := range p.States {
		accept := ""
		if s.Accept {
			accept = " accept"
		}
		if _, err := fmt.Fprintf(w, "state %d%s\n", s.ID, accept); err != nil {
			return err
		}
		for _, r := range s.Ranges {
			if _, err := fmt.Fprintf(w, "  %s -> %d s%d c%d\n", byteRangeString(r.Lo, r.Hi), r.Next, r.SaveList.ID(), r.CopyList.ID()); err != nil {
				return err
			}
		}
		if s.AcceptBlock != nil {
			if _, err := fmt.Fprintf(w, "  accept %s\n", blockRef(s.AcceptBlock)); err != nil {
				return err
			}
		}
		if s.EOTBlock != nil {
			if _, err := fmt.Fprintf(w, "  eot %s\n", blockRef(s.EOTBlock)); err != nil {
				return err
			}
		}
	}
	return p.Indices.Dump(w, p.CFG)
}

func blockRef(b *tags.Block) string {
	if b == nil {
		return "-"
	}
	if !b.Indexed() {
		return fmt.Sprintf("b%d", b.ID)
	}
	return fmt.Sprintf("b%d s%d c%d", b.ID, b.SaveList.ID(), b.CopyList.ID())
}

func byteRangeString(lo, hi byte) string {
	if lo == hi {
		return strconv.QuoteRune(rune(lo))
	}
	return strconv.QuoteRune(rune(lo)) + "-" + strconv.QuoteRune(rune(hi))
}
