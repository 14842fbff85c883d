package tags

// BlockID identifies a basic block within a CFG.
type BlockID int

// Block is a basic block carrying the tag commands executed on entry.
//
// Saves and Copies are the raw commands filled in while the automaton is
// built; they are owned by the block and may be in any order. IndexCFG
// replaces them with the shared SaveList and CopyList representatives.
type Block struct {
	ID     BlockID
	Saves  []Save
	Copies []Copy

	SaveList *List[Save]
	CopyList *List[Copy]
}

// AddSave appends a raw save command.
func (b *Block) AddSave(slot SlotID) {
	b.Saves = append(b.Saves, Save{Slot: slot})
}

// AddCopy appends a raw copy command.
func (b *Block) AddCopy(dst, src SlotID) {
	b.Copies = append(b.Copies, Copy{Dst: dst, Src: src})
}

// Indexed reports whether the block's commands have been interned.
func (b *Block) Indexed() bool {
	return b.SaveList != nil && b.CopyList != nil
}

// CFG is the ordered sequence of basic blocks of one compiled automaton.
type CFG struct {
	Blocks []*Block
}

// NewBlock appends an empty block and returns it.
func (g *CFG) NewBlock() *Block {
	b := &Block{ID: BlockID(len(g.Blocks))}
	g.Blocks = append(g.Blocks, b)
	return b
}
