package stubs

import (
	"fmt"
	"io"
)

var hlasmPrologue = []string{
	"         TITLE 'ZISSTUBS'",
	"         ACONTROL AFPR",
	"ZISSTUBS CSECT",
	"ZISSTUBS AMODE 64",
	"ZISSTUBS RMODE ANY",
	"         SYSSTATE ARCHLVL=2,AMODE64=YES",
	"         IEABRCX DEFINE",
	".* The HLASM GOFF option is needed to assemble this program",
}

var hlasmEpilogue = []string{
	"         EJECT",
	"ZISSTUBS CSECT ,",
	"         END",
}

// initBanner brackets the generated C statements, before and after.
var initBanner = []string{
	"/*",
	"  This program and the accompanying materials are",
	"  made available under the terms of the Eclipse Public License v2.0 which accompanies",
	"  this distribution, and is available at https://www.eclipse.org/legal/epl-v20.html",
	"",
	"  SPDX-License-Identifier: EPL-2.0",
	"",
	"  Copyright Contributors to the Zowe Project.",
	"*/",
}

// Emitter writes one artifact to w. Writes go straight through; wrap w in a
// buffer or a temp file if the output must appear atomically.
type Emitter struct {
	w        io.Writer
	out      OutputMode
	dispatch DispatchMode
	seq      dispatchSeq
}

// NewEmitter validates the modes. dispatch is ignored for OutputInit.
func NewEmitter(w io.Writer, out OutputMode, dispatch DispatchMode) (*Emitter, error) {
	em := &Emitter{w: w, out: out, dispatch: dispatch}
	switch out {
	case OutputASM:
		seq, ok := lookupDispatch(dispatch)
		if !ok {
			return nil, fmt.Errorf("%w %d", ErrUnknownDispatch, dispatch)
		}
		em.seq = seq
	case OutputInit:
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownOutput, out)
	}
	return em, nil
}

// Prologue writes the fixed header block.
func (em *Emitter) Prologue() error {
	if em.out == OutputASM {
		return em.lines(hlasmPrologue)
	}
	return em.lines(initBanner)
}

// Epilogue writes the fixed trailer block.
func (em *Emitter) Epilogue() error {
	if em.out == OutputASM {
		return em.lines(hlasmEpilogue)
	}
	return em.lines(initBanner)
}

// Entry writes the block for one stub.
func (em *Emitter) Entry(e Entry) error {
	switch em.out {
	case OutputASM:
		return em.trampoline(e)
	case OutputInit:
		_, err := fmt.Fprintf(em.w, "    stubVector[ZIS_STUB_%-8.8s] = (void*)%s;\n", e.Symbol, e.Function)
		return err
	}
	panic(fmt.Sprintf("stubs: emitter with output mode %d", em.out))
}

func (em *Emitter) trampoline(e Entry) error {
	offset := e.Index * slotSize
	if offset > maxDisplacement {
		return &Error{Kind: KindOffsetRange, Span: e.Span, Index: e.Index, Symbol: e.Symbol}
	}
	if em.seq.first == "" {
		panic(fmt.Sprintf("stubs: emitter with dispatch mode %d", em.dispatch))
	}

	ew := &errWriter{w: em.w}
	ew.printf("         ENTRY %s\n", e.Symbol)
	if !e.Mapped {
		ew.printf("%-8.8s ALIAS C'%s'\n", e.Symbol, e.Function)
	}
	ew.printf("%-8.8s %s\n", e.Symbol, em.seq.first)
	for _, ins := range em.seq.rest {
		ew.printf("         %s\n", ins)
	}
	ew.printf("         LG   15,X'%02X'(,15)    %s\n", offset, e.Symbol)
	ew.printf("         BR   15\n")
	return ew.err
}

func (em *Emitter) lines(block []string) error {
	ew := &errWriter{w: em.w}
	for _, line := range block {
		ew.printf("%s\n", line)
	}
	return ew.err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
