package tags

import (
	"fmt"
	"io"
)

// Indices holds the save and copy indexes produced by IndexCFG. The two
// kinds are never compared against each other.
type Indices struct {
	Saves  *Index[Save]
	Copies *Index[Copy]
}

// IndexCFG canonicalizes and interns the commands of every block in g.
// Afterwards two blocks share a representative exactly when their raw
// commands are equal as sets. Blocks are processed in order; no block
// depends on another.
func IndexCFG(g *CFG) *Indices {
	ix := &Indices{
		Saves:  NewIndex[Save](),
		Copies: NewIndex[Copy](),
	}
	for _, b := range g.Blocks {
		ix.IndexBlock(b)
	}
	return ix
}

// IndexBlock interns the raw commands of a single block and drops them.
func (ix *Indices) IndexBlock(b *Block) {
	b.SaveList = ix.Saves.Intern(b.Saves)
	b.CopyList = ix.Copies.Intern(b.Copies)
	b.Saves, b.Copies = nil, nil
}

// Dump writes a listing of all representatives followed by the
// representative pair of every block in g.
func (ix *Indices) Dump(w io.Writer, g *CFG) error {
	if _, err := fmt.Fprintf(w, "save lists: %d\n", ix.Saves.Len()); err != nil {
		return err
	}
	for i, l := range ix.Saves.All() {
		if _, err := fmt.Fprintf(w, "  s%d %s\n", i, l); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "copy lists: %d\n", ix.Copies.Len()); err != nil {
		return err
	}
	for i, l := range ix.Copies.All() {
		if _, err := fmt.Fprintf(w, "  c%d %s\n", i, l); err != nil {
			return err
		}
	}
	if g == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "blocks: %d\n", len(g.Blocks)); err != nil {
		return err
	}
	for _, b := range g.Blocks {
		if !b.Indexed() {
			if _, err := fmt.Fprintf(w, "  b%d unindexed\n", b.ID); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  b%d s%d c%d\n", b.ID, b.SaveList.ID(), b.CopyList.ID()); err != nil {
			return err
		}
	}
	return nil
}
