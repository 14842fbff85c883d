package compiler

import (
	"fmt"

	"github.com/KromDaniel/regtag/internal/codegen"
	"github.com/KromDaniel/regtag/internal/tags"
	"github.com/dave/jennifer/jen"
)

// emit writes the generated matcher into c.file. The automaton lives in
// package level tables; command lists are executed by two switch functions
// with one case per non-empty representative, so blocks sharing a
// representative share its code.
func (c *Compiler) emit() error {
	p := c.program
	name := c.config.Name
	if name == "" {
		return fmt.Errorf("missing type name")
	}

	// Add warning comment if there are repeating captures
	if c.hasRepeatingCaptures {
		c.file.Comment("Note: This pattern contains capture groups in repeating/optional context.")
		c.file.Comment("Only the last iteration of a repeated group is reported, as in the regexp package.")
		c.file.Line()
	}

	// Generate the main struct type
	c.file.Type().Id(name).Struct()
	c.file.Line()

	// Generate convenience variable for direct usage
	c.file.Var().Id(fmt.Sprintf("Compiled%s", name)).Op("=").Id(name).Values()
	c.file.Line()

	structName := name + "Result"
	bytesStructName := name + "BytesResult"
	c.emitResultStruct(structName, false)
	c.emitResultStruct(bytesStructName, true)

	c.emitTables()
	saves := c.emitApplySave()
	copies := c.emitApplyCopy()
	c.logger.Log("Emitted %d save cases and %d copy cases for %d blocks", saves, copies, len(p.CFG.Blocks))

	c.emitExec()
	c.emitFind()
	c.emitMethods(structName, bytesStructName)
	return nil
}

func (c *Compiler) regsType() *jen.Statement {
	return jen.Op("*").Index(jen.Lit(c.program.NumRegs)).Int()
}

func (c *Compiler) matchType() *jen.Statement {
	return jen.Index(jen.Lit(2 * c.program.NumCap)).Int()
}

// inputTypes is the constraint shared by the generic helpers.
func inputTypes() *jen.Statement {
	return jen.Id("T").Union(jen.String(), jen.Index().Byte())
}

func (c *Compiler) helper(suffix string) string {
	return codegen.HelperName(c.config.Name, suffix)
}

// emitResultStruct generates the result struct with string or []byte fields.
func (c *Compiler) emitResultStruct(structName string, isBytes bool) {
	typ := func() *jen.Statement {
		if isBytes {
			return jen.Index().Byte()
		}
		return jen.String()
	}

	fields := []jen.Code{
		jen.Id("Match").Add(typ()).Comment("Full match"),
	}
	for _, f := range c.fields {
		fields = append(fields, jen.Id(f).Add(typ()))
	}

	c.file.Type().Id(structName).Struct(fields...)
	c.file.Line()
}

// listRef returns the table value for a representative: its index plus
// one, or zero when the list is empty.
func listRef[C tags.Command[C]](l *tags.List[C]) int {
	if l == nil || l.Empty() {
		return 0
	}
	return l.ID() + 1
}

// emitTables generates the transition, action and final tables.
func (c *Compiler) emitTables() {
	p := c.program
	n := len(p.States)

	next, saveOn, copyOn := jen.Dict{}, jen.Dict{}, jen.Dict{}
	accept, acceptSave, acceptCopy := jen.Dict{}, jen.Dict{}, jen.Dict{}
	eot, eotSave, eotCopy := jen.Dict{}, jen.Dict{}, jen.Dict{}

	for _, s := range p.States {
		row, saveRow, copyRow := jen.Dict{}, jen.Dict{}, jen.Dict{}
		for _, r := range s.Ranges {
			for b := int(r.Lo); b <= int(r.Hi); b++ {
				row[jen.Lit(b)] = jen.Lit(r.Next + 1)
				if ref := listRef(r.SaveList); ref != 0 {
					saveRow[jen.Lit(b)] = jen.Lit(ref)
				}
				if ref := listRef(r.CopyList); ref != 0 {
					copyRow[jen.Lit(b)] = jen.Lit(ref)
				}
			}
		}
		if len(row) > 0 {
			next[jen.Lit(s.ID)] = jen.Values(row)
		}
		if len(saveRow) > 0 {
			saveOn[jen.Lit(s.ID)] = jen.Values(saveRow)
		}
		if len(copyRow) > 0 {
			copyOn[jen.Lit(s.ID)] = jen.Values(copyRow)
		}

		if b := s.AcceptBlock; b != nil {
			accept[jen.Lit(s.ID)] = jen.True()
			if ref := listRef(b.SaveList); ref != 0 {
				acceptSave[jen.Lit(s.ID)] = jen.Lit(ref)
			}
			if ref := listRef(b.CopyList); ref != 0 {
				acceptCopy[jen.Lit(s.ID)] = jen.Lit(ref)
			}
		}
		if b := s.EOTBlock; b != nil {
			eot[jen.Lit(s.ID)] = jen.True()
			if ref := listRef(b.SaveList); ref != 0 {
				eotSave[jen.Lit(s.ID)] = jen.Lit(ref)
			}
			if ref := listRef(b.CopyList); ref != 0 {
				eotCopy[jen.Lit(s.ID)] = jen.Lit(ref)
			}
		}
	}

	byteTable := func(id, comment string, values jen.Dict) {
		c.file.Comment(comment)
		c.file.Var().Id(c.helper(id)).Op("=").
			Index(jen.Lit(n)).Index(jen.Lit(MaxASCIIRune)).Int32().Values(values)
		c.file.Line()
	}
	stateTable := func(id, comment string, elem *jen.Statement, values jen.Dict) {
		if comment != "" {
			c.file.Comment(comment)
		}
		c.file.Var().Id(c.helper(id)).Op("=").
			Index(jen.Lit(n)).Add(elem).Values(values)
		c.file.Line()
	}

	byteTable("Next", "Next state plus one per state and byte, 0 for no transition.", next)
	byteTable("SaveOn", "Save list per transition, plus one.", saveOn)
	byteTable("CopyOn", "Copy list per transition, plus one.", copyOn)
	stateTable("Accept", "States where a match ends.", jen.Bool(), accept)
	stateTable("AcceptSave", "", jen.Int32(), acceptSave)
	stateTable("AcceptCopy", "", jen.Int32(), acceptCopy)
	stateTable("EOT", "States where a match ends at end of text.", jen.Bool(), eot)
	stateTable("EOTSave", "", jen.Int32(), eotSave)
	stateTable("EOTCopy", "", jen.Int32(), eotCopy)
}

// emitApplySave generates the save switch and returns its case count.
func (c *Compiler) emitApplySave() int {
	var cases []jen.Code
	for id, l := range c.program.Indices.Saves.All() {
		if l.Empty() {
			continue
		}
		var stmts []jen.Code
		for s := range l.All() {
			stmts = append(stmts, jen.Id(codegen.RegsName).Index(jen.Lit(int(s.Slot))).Op("=").Id(codegen.PosName))
		}
		cases = append(cases, jen.Case(jen.Lit(id+1)).Block(stmts...))
	}

	c.file.Func().Id(codegen.ApplySaveName(c.config.Name)).
		Params(jen.Id(codegen.RegsName).Add(c.regsType()), jen.Id("id").Int32(), jen.Id(codegen.PosName).Int()).
		Block(jen.Switch(jen.Id("id")).Block(cases...))
	c.file.Line()
	return len(cases)
}

// emitApplyCopy generates the copy switch. Each list is one parallel
// assignment, so a register read by one copy is never clobbered by another.
func (c *Compiler) emitApplyCopy() int {
	var cases []jen.Code
	for id, l := range c.program.Indices.Copies.All() {
		if l.Empty() {
			continue
		}
		var dst, src []jen.Code
		for cp := range l.All() {
			dst = append(dst, jen.Id(codegen.RegsName).Index(jen.Lit(int(cp.Dst))))
			src = append(src, jen.Id(codegen.RegsName).Index(jen.Lit(int(cp.Src))))
		}
		cases = append(cases, jen.Case(jen.Lit(id+1)).Block(jen.List(dst...).Op("=").List(src...)))
	}

	c.file.Func().Id(codegen.ApplyCopyName(c.config.Name)).
		Params(jen.Id(codegen.RegsName).Add(c.regsType()), jen.Id("id").Int32()).
		Block(jen.Switch(jen.Id("id")).Block(cases...))
	c.file.Line()
	return len(cases)
}

// applyBlock returns the statements running a block known at generation
// time.
func (c *Compiler) applyBlock(b *tags.Block, pos jen.Code) []jen.Code {
	var code []jen.Code
	if ref := listRef(b.CopyList); ref != 0 {
		code = append(code, jen.Id(codegen.ApplyCopyName(c.config.Name)).Call(jen.Id(codegen.RegsName), jen.Lit(ref)))
	}
	if ref := listRef(b.SaveList); ref != 0 {
		code = append(code, jen.Id(codegen.ApplySaveName(c.config.Name)).Call(jen.Id(codegen.RegsName), jen.Lit(ref), pos))
	}
	return code
}

// applyTable returns the statements running the block stored in a table.
func (c *Compiler) applyTable(saveTable, copyTable *jen.Statement, pos jen.Code) []jen.Code {
	return []jen.Code{
		jen.Id(codegen.ApplyCopyName(c.config.Name)).Call(jen.Id(codegen.RegsName), copyTable),
		jen.Id(codegen.ApplySaveName(c.config.Name)).Call(jen.Id(codegen.RegsName), saveTable, pos),
	}
}

// emitExec generates one anchored match attempt returning the match end.
func (c *Compiler) emitExec() {
	p := c.program
	regs := jen.Id(codegen.RegsName)
	state := jen.Id(codegen.StateName)
	start := jen.Id(codegen.StartName)
	end := jen.Id(codegen.EndName)
	input := jen.Id(codegen.InputName)
	ch := jen.Id(codegen.ByteName)

	stateIndex := func(table string) *jen.Statement {
		return jen.Id(c.helper(table)).Index(jen.Id(codegen.StateName))
	}
	byteIndex := func(table string) *jen.Statement {
		return stateIndex(table).Index(jen.Id(codegen.ByteName))
	}

	beginInit := append([]jen.Code{jen.Id(codegen.StateName).Op("=").Lit(p.StartBegin)},
		c.applyBlock(p.InitBegin, jen.Id(codegen.StartName))...)
	anyInit := c.applyBlock(p.InitAny, jen.Id(codegen.StartName))

	step := []jen.Code{
		ch.Clone().Op(":=").Add(input.Clone()).Index(jen.Id("i")),
		jen.If(ch.Clone().Op(">=").Lit(MaxASCIIRune)).Block(jen.Return(jen.Id(codegen.EndName))),
		jen.Id("next").Op(":=").Add(byteIndex("Next")).Op("-").Lit(1),
		jen.If(jen.Id("next").Op("<").Lit(0)).Block(jen.Return(jen.Id(codegen.EndName))),
	}
	step = append(step, c.applyTable(byteIndex("SaveOn"), byteIndex("CopyOn"), jen.Id("i").Op("+").Lit(1))...)
	step = append(step,
		jen.Id(codegen.StateName).Op("=").Id("next"),
		jen.If(stateIndex("Accept")).Block(append(
			c.applyTable(stateIndex("AcceptSave"), stateIndex("AcceptCopy"), jen.Id("i").Op("+").Lit(1)),
			end.Clone().Op("=").Id("i").Op("+").Lit(1),
		)...),
	)

	body := []jen.Code{
		jen.For(jen.Id("i").Op(":=").Range().Add(regs)).Block(
			jen.Id(codegen.RegsName).Index(jen.Id("i")).Op("=").Lit(-1),
		),
		jen.Var().Id(codegen.StateName).Int32().Op("=").Lit(p.StartAny),
		jen.If(start.Clone().Op("==").Lit(0)).Block(beginInit...).Else().Block(anyInit...),
		jen.If(state.Clone().Op("<").Lit(0)).Block(jen.Return(jen.Lit(-1))),
		jen.Id(codegen.EndName).Op(":=").Lit(-1),
		jen.If(stateIndex("Accept")).Block(append(
			c.applyTable(stateIndex("AcceptSave"), stateIndex("AcceptCopy"), jen.Id(codegen.StartName)),
			end.Clone().Op("=").Id(codegen.StartName),
		)...),
		jen.For(
			jen.Id("i").Op(":=").Id(codegen.StartName),
			jen.Id("i").Op("<").Len(input),
			jen.Id("i").Op("++"),
		).Block(step...),
		jen.If(stateIndex("EOT")).Block(append(
			c.applyTable(stateIndex("EOTSave"), stateIndex("EOTCopy"), jen.Len(input)),
			end.Clone().Op("=").Len(input),
		)...),
		jen.Return(end),
	}

	c.file.Comment(fmt.Sprintf("%s runs one match attempt anchored at start and returns the match end, or -1.", c.helper("Exec")))
	c.file.Func().Id(c.helper("Exec")).
		Types(inputTypes()).
		Params(input.Clone().Id("T"), start.Clone().Int(), jen.Id(codegen.RegsName).Add(c.regsType())).
		Int().
		Block(body...)
	c.file.Line()
}

// emitFind generates the leftmost search returning submatch indexes.
func (c *Compiler) emitFind() {
	p := c.program
	m := jen.Id(codegen.MatchName)
	regs := jen.Id(codegen.RegsName)

	loop := []jen.Code{}
	if p.StartAny < 0 {
		// only offset 0 can start a match
		loop = append(loop, jen.If(jen.Id(codegen.StartName).Op(">").Lit(0)).Block(jen.Break()))
	}
	loop = append(loop,
		jen.Id(codegen.EndName).Op(":=").Id(c.helper("Exec")).Call(jen.Id(codegen.InputName), jen.Id(codegen.StartName), regs),
		jen.If(jen.Id(codegen.EndName).Op("<").Lit(0)).Block(jen.Continue()),
		jen.List(m.Clone().Index(jen.Lit(0)), m.Clone().Index(jen.Lit(1))).Op("=").List(jen.Id(codegen.StartName), jen.Id(codegen.EndName)),
	)
	for g := 1; g < p.NumCap; g++ {
		lo := regs.Clone().Index(jen.Lit(int(OutputSlot(2 * g))))
		hi := regs.Clone().Index(jen.Lit(int(OutputSlot(2*g + 1))))
		loop = append(loop,
			jen.If(lo.Clone().Op(">=").Lit(0).Op("&&").Add(hi.Clone()).Op(">=").Lit(0)).Block(
				jen.List(m.Clone().Index(jen.Lit(2*g)), m.Clone().Index(jen.Lit(2*g+1))).Op("=").List(lo, hi),
			).Else().Block(
				jen.List(m.Clone().Index(jen.Lit(2*g)), m.Clone().Index(jen.Lit(2*g+1))).Op("=").List(jen.Lit(-1), jen.Lit(-1)),
			),
		)
	}
	loop = append(loop, jen.Return(m, jen.True()))

	c.file.Comment(fmt.Sprintf("%s returns the leftmost match at or after from.", c.helper("Find")))
	c.file.Func().Id(c.helper("Find")).
		Types(inputTypes()).
		Params(jen.Id(codegen.InputName).Id("T"), jen.Id("from").Int(), jen.Id(codegen.RegsName).Add(c.regsType())).
		Params(c.matchType(), jen.Bool()).
		Block(
			jen.Var().Id(codegen.MatchName).Add(c.matchType()),
			jen.For(
				jen.Id(codegen.StartName).Op(":=").Id("from"),
				jen.Id(codegen.StartName).Op("<=").Len(jen.Id(codegen.InputName)),
				jen.Id(codegen.StartName).Op("++"),
			).Block(loop...),
			jen.Return(jen.Id(codegen.MatchName), jen.False()),
		)
	c.file.Line()
}

// emitMethods generates the public API on the generated type.
func (c *Compiler) emitMethods(structName, bytesStructName string) {
	regsDecl := jen.Var().Id(codegen.RegsName).Index(jen.Lit(c.program.NumRegs)).Int()
	find := func(from jen.Code) *jen.Statement {
		return jen.Id(c.helper("Find")).Call(jen.Id(codegen.InputName), from, jen.Op("&").Id(codegen.RegsName))
	}

	for _, isBytes := range []bool{false, true} {
		suffix, inputType, resultName := "String", jen.String(), structName
		indexMethod := "FindStringSubmatchIndex"
		if isBytes {
			suffix, inputType, resultName = "Bytes", jen.Index().Byte(), bytesStructName
			indexMethod = "FindSubmatchIndex"
		}

		c.method("Match"+suffix).
			Params(jen.Id(codegen.InputName).Add(inputType.Clone())).
			Params(jen.Bool()).
			Block(
				regsDecl.Clone(),
				jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Add(find(jen.Lit(0))),
				jen.Return(jen.Id("ok")),
			)
		c.file.Line()

		c.method(indexMethod).
			Params(jen.Id(codegen.InputName).Add(inputType.Clone())).
			Params(jen.Index().Int()).
			Block(
				regsDecl.Clone(),
				jen.List(jen.Id(codegen.MatchName), jen.Id("ok")).Op(":=").Add(find(jen.Lit(0))),
				jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.Nil())),
				jen.Return(jen.Id(codegen.MatchName).Index(jen.Op(":"))),
			)
		c.file.Line()

		builder := c.helper(suffix + "Result")
		c.emitResultBuilder(builder, resultName, inputType.Clone())

		c.method("Find"+suffix).
			Params(jen.Id(codegen.InputName).Add(inputType.Clone())).
			Params(jen.Op("*").Id(resultName), jen.Bool()).
			Block(
				regsDecl.Clone(),
				jen.List(jen.Id(codegen.MatchName), jen.Id("ok")).Op(":=").Add(find(jen.Lit(0))),
				jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.Nil(), jen.False())),
				jen.Return(jen.Id(builder).Call(jen.Id(codegen.InputName), jen.Id(codegen.MatchName)), jen.True()),
			)
		c.file.Line()

		c.emitFindAll(suffix, inputType.Clone(), resultName, builder, isBytes)
	}
}

// emitResultBuilder generates the conversion from submatch indexes to a
// result struct. Groups that did not participate stay empty.
func (c *Compiler) emitResultBuilder(name, resultName string, inputType *jen.Statement) {
	m := jen.Id(codegen.MatchName)
	input := jen.Id(codegen.InputName)
	body := []jen.Code{
		jen.Id("r").Op(":=").Op("&").Id(resultName).Values(jen.Dict{
			jen.Id("Match"): input.Clone().Index(m.Clone().Index(jen.Lit(0)).Op(":").Add(m.Clone().Index(jen.Lit(1)))),
		}),
	}
	for i, f := range c.fields {
		g := i + 1
		body = append(body, jen.If(m.Clone().Index(jen.Lit(2*g)).Op(">=").Lit(0)).Block(
			jen.Id("r").Dot(f).Op("=").Add(input.Clone()).Index(m.Clone().Index(jen.Lit(2*g)).Op(":").Add(m.Clone().Index(jen.Lit(2*g+1)))),
		))
	}
	body = append(body, jen.Return(jen.Id("r")))

	c.file.Func().Id(name).
		Params(input.Clone().Add(inputType), m.Clone().Add(c.matchType())).
		Params(jen.Op("*").Id(resultName)).
		Block(body...)
	c.file.Line()
}

// emitFindAll generates FindAll with the successive match rules of the
// regexp package: an empty match right after the previous match is
// skipped, and the search moves one rune past an empty match.
func (c *Compiler) emitFindAll(suffix string, inputType *jen.Statement, resultName, builder string, isBytes bool) {
	input := jen.Id(codegen.InputName)
	m := jen.Id(codegen.MatchName)
	pos := jen.Id(codegen.PosName)

	decode := jen.Qual("unicode/utf8", "DecodeRuneInString")
	if isBytes {
		decode = jen.Qual("unicode/utf8", "DecodeRune")
	}

	c.method("FindAll"+suffix).
		Params(input.Clone().Add(inputType), jen.Id("n").Int()).
		Params(jen.Index().Op("*").Id(resultName)).
		Block(
			jen.If(jen.Id("n").Op("==").Lit(0)).Block(jen.Return(jen.Nil())),
			jen.Var().Id(codegen.RegsName).Index(jen.Lit(c.program.NumRegs)).Int(),
			jen.Var().Id("results").Index().Op("*").Id(resultName),
			jen.Id("prevEnd").Op(":=").Lit(-1),
			jen.For(
				pos.Clone().Op(":=").Lit(0),
				pos.Clone().Op("<=").Len(input.Clone()).Op("&&").Parens(
					jen.Id("n").Op("<").Lit(0).Op("||").Len(jen.Id("results")).Op("<").Id("n")),
				jen.Empty(),
			).Block(
				jen.List(m.Clone(), jen.Id("ok")).Op(":=").Id(c.helper("Find")).Call(input.Clone(), pos.Clone(), jen.Op("&").Id(codegen.RegsName)),
				jen.If(jen.Op("!").Id("ok")).Block(jen.Break()),
				jen.Id("accept").Op(":=").True(),
				jen.If(m.Clone().Index(jen.Lit(1)).Op("==").Add(pos.Clone())).Block(
					jen.If(m.Clone().Index(jen.Lit(0)).Op("==").Id("prevEnd")).Block(
						jen.Comment("no empty match right after the previous match"),
						jen.Id("accept").Op("=").False(),
					),
					jen.If(pos.Clone().Op("<").Len(input.Clone())).Block(
						jen.List(jen.Id("_"), jen.Id("width")).Op(":=").Add(decode).Call(input.Clone().Index(pos.Clone().Op(":"))),
						pos.Clone().Op("+=").Id("width"),
					).Else().Block(
						pos.Clone().Op("++"),
					),
				).Else().Block(
					pos.Clone().Op("=").Add(m.Clone().Index(jen.Lit(1))),
				),
				jen.Id("prevEnd").Op("=").Add(m.Clone().Index(jen.Lit(1))),
				jen.If(jen.Id("accept")).Block(
					jen.Id("results").Op("=").Append(jen.Id("results"), jen.Id(builder).Call(input.Clone(), m.Clone())),
				),
			),
			jen.Return(jen.Id("results")),
		)
	c.file.Line()
}
