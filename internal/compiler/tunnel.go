package compiler

import "github.com/KromDaniel/regtag/internal/tags"

// ByteRange is a run of consecutive bytes that lead to the same state
// through the same command lists.
type ByteRange struct {
	Lo, Hi   byte // inclusive
	Next     int
	SaveList *tags.List[tags.Save]
	CopyList *tags.List[tags.Copy]
}

// tunnel merges the transitions of every state into byte ranges. It must
// run after indexing: two transitions only merge when they share both
// representatives, which is a pointer comparison.
func tunnel(states []*TDFAState) int {
	total := 0
	for _, s := range states {
		s.Ranges = s.Ranges[:0]
		for c := 0; c < MaxASCIIRune; c++ {
			next := s.Trans[c]
			if next < 0 {
				continue
			}
			blk := s.Blocks[c]
			if n := len(s.Ranges); n > 0 {
				last := &s.Ranges[n-1]
				if int(last.Hi)+1 == c && last.Next == next &&
					last.SaveList == blk.SaveList && last.CopyList == blk.CopyList {
					last.Hi = byte(c)
					continue
				}
			}
			s.Ranges = append(s.Ranges, ByteRange{
				Lo:       byte(c),
				Hi:       byte(c),
				Next:     next,
				SaveList: blk.SaveList,
				CopyList: blk.CopyList,
			})
		}
		total += len(s.Ranges)
	}
	return total
}
