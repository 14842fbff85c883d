package compiler

import (
	"fmt"
	"regexp/syntax"
	"slices"
	"strconv"
	"strings"

	"github.com/KromDaniel/regtag/internal/tags"
)

// valNow marks a tag set at the position being processed. It only appears
// in configurations under construction, never in a stored state.
const valNow tags.SlotID = -1

// item is one NFA thread: an instruction and the register holding each tag.
type item struct {
	pc   int
	regs []tags.SlotID
}

// TDFAState represents a state in the Tagged DFA.
// A state is an ordered list of NFA threads, highest priority first. Each
// thread maps every tag to a register owned by the state.
type TDFAState struct {
	ID     int
	Accept bool // a thread reached Match without consuming more input

	// Trans[c] is the next state on byte c, -1 for none. Blocks[c] holds
	// the commands run on that transition.
	Trans  [MaxASCIIRune]int
	Blocks [MaxASCIIRune]*tags.Block

	// AcceptBlock copies the matching thread's registers to the output
	// registers. EOTBlock does the same at end of text and is nil when the
	// state cannot match there.
	AcceptBlock *tags.Block
	EOTBlock    *tags.Block

	// Ranges are the transitions merged by tunnel.
	Ranges []ByteRange

	items []item
	eot   *item // thread matching when the input ends here
}

// TDFAGenerator determinizes a syntax program into a Tagged DFA whose
// transitions carry save and copy commands on registers.
type TDFAGenerator struct {
	prog      *syntax.Prog
	numTags   int
	maxStates int
	logger    *Logger

	states   []*TDFAState
	stateMap map[string]int // configuration key -> state index
	cfg      *tags.CFG
	nextReg  tags.SlotID

	startBegin int // start state at offset 0, -1 if none
	startAny   int // start state at offset > 0, -1 if none

	initBegin *tags.Block
	initAny   *tags.Block
}

// NewTDFAGenerator creates a new Tagged DFA generator.
func NewTDFAGenerator(prog *syntax.Prog, maxStates int, logger *Logger) *TDFAGenerator {
	if maxStates <= 0 {
		maxStates = DefaultTDFAThreshold
	}
	if logger == nil {
		logger = NewLogger(false)
	}
	return &TDFAGenerator{
		prog:       prog,
		numTags:    prog.NumCap,
		maxStates:  maxStates,
		logger:     logger,
		stateMap:   make(map[string]int),
		cfg:        &tags.CFG{},
		nextReg:    OutputSlot(prog.NumCap),
		startBegin: -1,
		startAny:   -1,
	}
}

// checkSupported rejects empty-width assertions other than ^ and $.
func (g *TDFAGenerator) checkSupported() error {
	for pc, inst := range g.prog.Inst {
		if inst.Op != syntax.InstEmptyWidth {
			continue
		}
		switch syntax.EmptyOp(inst.Arg) {
		case syntax.EmptyBeginText, syntax.EmptyEndText:
		default:
			return fmt.Errorf("%w: empty-width assertion %#x at instruction %d", ErrUnsupported, inst.Arg, pc)
		}
	}
	return nil
}

// Build constructs the states and the CFG of command blocks.
func (g *TDFAGenerator) Build() error {
	if err := g.checkSupported(); err != nil {
		return err
	}

	seed := []item{{pc: g.prog.Start, regs: make([]tags.SlotID, g.numTags)}}
	var err error

	// offset 0 may also be the end of an empty input
	g.initBegin = g.cfg.NewBlock()
	conf, eot := g.configure(seed, syntax.EmptyBeginText)
	g.startBegin, err = g.enter(conf, eot, g.initBegin)
	if err != nil {
		return err
	}
	g.initAny = g.cfg.NewBlock()
	conf, eot = g.configure(seed, 0)
	g.startAny, err = g.enter(conf, eot, g.initAny)
	if err != nil {
		return err
	}

	// States appended while iterating are processed in turn.
	for i := 0; i < len(g.states); i++ {
		state := g.states[i]
		for c := 0; c < MaxASCIIRune; c++ {
			seeds := g.step(state, byte(c))
			if len(seeds) == 0 {
				continue
			}
			conf, eot := g.configure(seeds, 0)
			if len(conf) == 0 && eot == nil {
				continue
			}
			blk := g.cfg.NewBlock()
			next, err := g.enter(conf, eot, blk)
			if err != nil {
				return err
			}
			state.Trans[c] = next
			state.Blocks[c] = blk
		}
	}

	for _, state := range g.states {
		if state.Accept {
			state.AcceptBlock = g.finalBlock(state.items[len(state.items)-1])
		}
		if state.eot != nil {
			state.EOTBlock = g.finalBlock(*state.eot)
		}
	}

	g.logger.Log("TDFA constructed with %d states, %d registers, %d blocks",
		len(g.states), g.nextReg, len(g.cfg.Blocks))
	return nil
}

// step returns the threads of state that consume c, advanced past it.
func (g *TDFAGenerator) step(state *TDFAState, c byte) []item {
	var seeds []item
	for _, it := range state.items {
		inst := &g.prog.Inst[it.pc]
		if matchByte(inst, c) {
			seeds = append(seeds, item{pc: int(inst.Out), regs: it.regs})
		}
	}
	return seeds
}

func matchByte(inst *syntax.Inst, c byte) bool {
	switch inst.Op {
	case syntax.InstRune, syntax.InstRune1:
		return inst.MatchRune(rune(c))
	case syntax.InstRuneAny:
		return true
	case syntax.InstRuneAnyNotNL:
		return c != '\n'
	}
	return false
}

// configure returns the closure of seeds under flags together with the
// thread that matches if the input ends at the same position, computed from
// the same seeds under flags|EmptyEndText.
func (g *TDFAGenerator) configure(seeds []item, flags syntax.EmptyOp) ([]item, *item) {
	conf := g.closure(seeds, flags)
	end := g.closure(seeds, flags|syntax.EmptyEndText)
	if len(end) == 0 || g.prog.Inst[end[len(end)-1].pc].Op != syntax.InstMatch {
		return conf, nil
	}
	return conf, &end[len(end)-1]
}

// closure follows empty transitions from seeds in priority order. Only the
// first path reaching an instruction is kept, and threads of lower
// priority than a reachable Match are cut. Captures passed on the way set
// their tag to valNow. Assertions not satisfied by flags end their thread.
func (g *TDFAGenerator) closure(seeds []item, flags syntax.EmptyOp) []item {
	visited := make([]bool, len(g.prog.Inst))
	var result []item

	stack := make([]item, 0, len(seeds))
	for i := len(seeds) - 1; i >= 0; i-- {
		stack = append(stack, seeds[i])
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.pc >= len(g.prog.Inst) || visited[it.pc] {
			continue
		}
		visited[it.pc] = true

		inst := &g.prog.Inst[it.pc]
		switch inst.Op {
		case syntax.InstMatch:
			return append(result, it)
		case syntax.InstRune, syntax.InstRune1, syntax.InstRuneAny, syntax.InstRuneAnyNotNL:
			result = append(result, it)
		case syntax.InstNop:
			stack = append(stack, item{pc: int(inst.Out), regs: it.regs})
		case syntax.InstCapture:
			regs := it.regs
			// the interpreter tracks the whole match itself
			if int(inst.Arg) >= ImplicitCaptureCount && int(inst.Arg) < len(regs) {
				regs = slices.Clone(regs)
				regs[inst.Arg] = valNow
			}
			stack = append(stack, item{pc: int(inst.Out), regs: regs})
		case syntax.InstAlt, syntax.InstAltMatch:
			// Out has priority: push Arg first so Out is popped first
			stack = append(stack,
				item{pc: int(inst.Arg), regs: it.regs},
				item{pc: int(inst.Out), regs: it.regs})
		case syntax.InstEmptyWidth:
			if syntax.EmptyOp(inst.Arg)&^flags == 0 {
				stack = append(stack, item{pc: int(inst.Out), regs: it.regs})
			}
		}
	}
	return result
}

// configKey identifies a configuration up to register renaming: the
// instruction list and end of text thread plus, for every tag, which values
// are equal.
func (g *TDFAGenerator) configKey(conf []item, eot *item) string {
	var sb strings.Builder
	classes := make(map[tags.SlotID]int)
	if eot != nil {
		conf = append(conf[:len(conf):len(conf)], *eot)
	}
	for i, it := range conf {
		if eot != nil && i == len(conf)-1 {
			sb.WriteByte('$')
		}
		sb.WriteString(strconv.Itoa(it.pc))
		sb.WriteByte(':')
		for t := ImplicitCaptureCount; t < g.numTags; t++ {
			v := it.regs[t]
			if v == UnsetSlot {
				sb.WriteByte('u')
			} else {
				id, ok := classes[v]
				if !ok {
					id = len(classes)
					classes[v] = id
				}
				sb.WriteString(strconv.Itoa(id))
			}
			sb.WriteByte(',')
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// enter maps conf and its end of text thread onto a state, creating it when
// needed, and appends to blk the commands that move their values into the
// state's registers. It returns -1 when both are empty.
func (g *TDFAGenerator) enter(conf []item, eot *item, blk *tags.Block) (int, error) {
	if len(conf) == 0 && eot == nil {
		return -1, nil
	}

	key := g.configKey(conf, eot)
	idx, ok := g.stateMap[key]
	if !ok {
		if len(g.states) >= g.maxStates {
			return -1, fmt.Errorf("%w: exceeded %d states", ErrTooManyStates, g.maxStates)
		}
		idx = g.newState(conf, eot)
		g.stateMap[key] = idx
	}

	state := g.states[idx]
	for i, it := range conf {
		g.moveRegs(blk, it.regs, state.items[i].regs)
	}
	if eot != nil {
		g.moveRegs(blk, eot.regs, state.eot.regs)
	}
	return idx, nil
}

func (g *TDFAGenerator) moveRegs(blk *tags.Block, from, to []tags.SlotID) {
	for t := ImplicitCaptureCount; t < g.numTags; t++ {
		v, r := from[t], to[t]
		switch {
		case v == UnsetSlot:
		case v == valNow:
			blk.AddSave(r)
		case v != r:
			blk.AddCopy(r, v)
		}
	}
}

// newState creates a state for conf and eot. Existing registers are kept,
// and all tags set at the current position share one fresh register.
func (g *TDFAGenerator) newState(conf []item, eot *item) int {
	state := &TDFAState{ID: len(g.states)}
	for c := range state.Trans {
		state.Trans[c] = -1
	}

	now := UnsetSlot
	place := func(it item) item {
		regs := make([]tags.SlotID, len(it.regs))
		for t := ImplicitCaptureCount; t < len(regs); t++ {
			v := it.regs[t]
			if v == valNow {
				if now == UnsetSlot {
					now = g.nextReg
					g.nextReg++
				}
				v = now
			}
			regs[t] = v
		}
		return item{pc: it.pc, regs: regs}
	}

	state.items = make([]item, len(conf))
	for i, it := range conf {
		state.items[i] = place(it)
	}
	if eot != nil {
		m := place(*eot)
		state.eot = &m
	}
	state.Accept = len(conf) > 0 && g.prog.Inst[conf[len(conf)-1].pc].Op == syntax.InstMatch

	g.states = append(g.states, state)
	return state.ID
}

// finalBlock returns a block copying the tags of the matching thread m to
// the output registers.
func (g *TDFAGenerator) finalBlock(m item) *tags.Block {
	blk := g.cfg.NewBlock()
	for t := ImplicitCaptureCount; t < g.numTags; t++ {
		blk.AddCopy(OutputSlot(t), m.regs[t])
	}
	return blk
}
