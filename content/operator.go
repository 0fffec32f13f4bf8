// Package content tokenizes and interprets PDF content streams (spec.md
// §4.5), the operator-by-operator program that paints a page: path
// construction and painting, clipping, graphics and text state, and text
// showing. It mirrors the reader/writer split the teacher uses for
// object syntax: Parse turns bytes into a flat operator/operand record
// sequence (grounded on reader/parser/content.go's ParseContentElement),
// and Emit serializes a record sequence back to bytes (grounded on
// contentstream/commands.go's WriteOperations).
package content

import (
	"bytes"
	"fmt"

	"github.com/corvuspdf/engine/object"
)

// Operator is a content-stream operator keyword (PDF 1.7 Table 51).
type Operator string

const (
	OpSaveState       Operator = "q"
	OpRestoreState    Operator = "Q"
	OpConcat          Operator = "cm"
	OpSetLineWidth    Operator = "w"
	OpSetLineCap      Operator = "J"
	OpSetLineJoin     Operator = "j"
	OpSetMiterLimit   Operator = "M"
	OpSetDash         Operator = "d"
	OpSetIntent       Operator = "ri"
	OpSetFlatness     Operator = "i"
	OpSetExtGState    Operator = "gs"
	OpMoveTo          Operator = "m"
	OpLineTo          Operator = "l"
	OpCurveTo         Operator = "c"
	OpCurveToV        Operator = "v"
	OpCurveToY        Operator = "y"
	OpClosePath       Operator = "h"
	OpRectangle       Operator = "re"
	OpStroke          Operator = "S"
	OpCloseStroke     Operator = "s"
	OpFill            Operator = "f"
	OpFillCompat      Operator = "F"
	OpFillEO          Operator = "f*"
	OpFillStroke      Operator = "B"
	OpFillStrokeEO    Operator = "B*"
	OpCloseFillStroke Operator = "b"
	OpCloseFillStrokeEO Operator = "b*"
	OpEndPath         Operator = "n"
	OpClip            Operator = "W"
	OpClipEO          Operator = "W*"
	OpSetStrokeCS     Operator = "CS"
	OpSetFillCS       Operator = "cs"
	OpSetStrokeColor  Operator = "SC"
	OpSetFillColor    Operator = "sc"
	OpSetStrokeColorN Operator = "SCN"
	OpSetFillColorN   Operator = "scn"
	OpSetStrokeGray   Operator = "G"
	OpSetFillGray     Operator = "g"
	OpSetStrokeRGB    Operator = "RG"
	OpSetFillRGB      Operator = "rg"
	OpSetStrokeCMYK   Operator = "K"
	OpSetFillCMYK     Operator = "k"
	OpShadingFill     Operator = "sh"
	OpBeginText       Operator = "BT"
	OpEndText         Operator = "ET"
	OpSetCharSpacing  Operator = "Tc"
	OpSetWordSpacing  Operator = "Tw"
	OpSetHorizScale   Operator = "Tz"
	OpSetLeading      Operator = "TL"
	OpSetFont         Operator = "Tf"
	OpSetTextRender   Operator = "Tr"
	OpSetTextRise     Operator = "Ts"
	OpTextMove        Operator = "Td"
	OpTextMoveSet     Operator = "TD"
	OpSetTextMatrix   Operator = "Tm"
	OpTextNextLine    Operator = "T*"
	OpShowText        Operator = "Tj"
	OpMoveShowText    Operator = "'"
	OpMoveSetShowText Operator = "\""
	OpShowTextArray   Operator = "TJ"
	OpBeginMarkedContentProps Operator = "BDC"
	OpBeginMarkedContent     Operator = "BMC"
	OpEndMarkedContent       Operator = "EMC"
	OpMarkPoint              Operator = "MP"
	OpMarkPointProps         Operator = "DP"
	OpXObject         Operator = "Do"
	OpBeginInlineImage Operator = "BI"
	OpInlineImageData  Operator = "ID"
	OpEndInlineImage   Operator = "EI"
)

// Operation is one parsed content-stream instruction: an operator and
// the operand objects that preceded it (spec.md §4.5 "(operator,
// operands[]) records"). InlineImage is only set for a BI operation.
type Operation struct {
	Op       Operator
	Operands []object.Object
	Image    *InlineImage
}

// InlineImage holds an inline image's parameter dictionary (abbreviated
// keys expanded to their full names) and raw data, for a "BI ... ID
// <data> EI" sequence (PDF 1.7 §8.9.7). Data is kept exactly as it
// appears in the content stream; this package does not run it through
// package filters (spec.md §4.5 Non-goals: rendering is out of scope,
// but the bytes and dimensions are exposed).
type InlineImage struct {
	Dict object.Dictionary
	Data []byte
}

func (op Operation) num(i int) float64 {
	if i < 0 || i >= len(op.Operands) {
		return 0
	}
	n, _ := object.AsNumber(op.Operands[i])
	return n
}

func (op Operation) name(i int) object.Name {
	if i < 0 || i >= len(op.Operands) {
		return ""
	}
	n, _ := object.AsName(op.Operands[i])
	return n
}

// Emit serializes a record sequence back to content-stream bytes,
// grounded on contentstream/commands.go's WriteOperations, but generic
// over Operation instead of one Go type per operator: this engine
// authors new content from the same (operator, operands) shape Parse
// produces, rather than maintaining 35 parallel struct types purely for
// serialization.
func Emit(ops []Operation) []byte {
	var out bytes.Buffer
	for _, op := range ops {
		if op.Op == OpBeginInlineImage && op.Image != nil {
			writeInlineImage(&out, op.Image)
			out.WriteByte('\n')
			continue
		}
		for _, operand := range op.Operands {
			fmt.Fprintf(&out, "%s ", formatOperand(operand))
		}
		out.WriteString(string(op.Op))
		out.WriteByte('\n')
	}
	return out.Bytes()
}

func formatOperand(o object.Object) string {
	switch v := o.(type) {
	case object.Integer:
		return fmt.Sprintf("%d", int64(v))
	case object.Real:
		return object.FormatReal(float64(v))
	case object.Name:
		return "/" + string(v)
	case object.Boolean:
		if v {
			return "true"
		}
		return "false"
	case object.String:
		return formatString(v)
	case object.Array:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(formatOperand(e))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return ""
	}
}

func formatString(s object.String) string {
	if s.Form == object.Hex {
		return "<" + fmt.Sprintf("%x", s.Bytes) + ">"
	}
	var b bytes.Buffer
	b.WriteByte('(')
	for _, c := range s.Bytes {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func writeInlineImage(out *bytes.Buffer, img *InlineImage) {
	out.WriteString("BI\n")
	for _, key := range img.Dict.Keys() {
		v, _ := img.Dict.Get(key)
		fmt.Fprintf(out, "/%s %s\n", key, formatOperand(v))
	}
	out.WriteString("ID\n")
	out.Write(img.Data)
	out.WriteString("\nEI")
}
