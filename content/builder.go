package content

import "github.com/corvuspdf/engine/object"

// Builder accumulates Operation records for page authoring (spec.md
// §4.5 "Authoring (emitter): components ... accumulate operator
// records; the emitter serializes them back to content-stream bytes"),
// grounded on contents/commands.go's WriteOperations chain but
// generalized over the single Operation shape Parse/Emit already use,
// instead of one constructor per operator struct.
type Builder struct {
	ops []Operation
}

// NewBuilder returns an empty content-stream Builder.
func NewBuilder() *Builder { return &Builder{} }

// Ops returns the accumulated operations in emission order.
func (b *Builder) Ops() []Operation { return b.ops }

// Bytes serializes the accumulated operations via Emit.
func (b *Builder) Bytes() []byte { return Emit(b.ops) }

func (b *Builder) push(op Operator, operands ...object.Object) *Builder {
	b.ops = append(b.ops, Operation{Op: op, Operands: operands})
	return b
}

func num(f float64) object.Object { return object.Real(f) }
func name(n object.Name) object.Object { return n }

// Save/Restore wrap a q/Q graphics-state scope.
func (b *Builder) Save() *Builder    { return b.push(OpSaveState) }
func (b *Builder) Restore() *Builder { return b.push(OpRestoreState) }

// Concat right-multiplies the CTM by m (cm).
func (b *Builder) Concat(m Matrix) *Builder {
	return b.push(OpConcat, num(m.A), num(m.B), num(m.C), num(m.D), num(m.E), num(m.F))
}

// MoveTo/LineTo/CurveTo/ClosePath/Rectangle build a path (m/l/c/h/re).
func (b *Builder) MoveTo(x, y float64) *Builder { return b.push(OpMoveTo, num(x), num(y)) }
func (b *Builder) LineTo(x, y float64) *Builder { return b.push(OpLineTo, num(x), num(y)) }
func (b *Builder) CurveTo(x1, y1, x2, y2, x3, y3 float64) *Builder {
	return b.push(OpCurveTo, num(x1), num(y1), num(x2), num(y2), num(x3), num(y3))
}
func (b *Builder) ClosePath() *Builder { return b.push(OpClosePath) }
func (b *Builder) Rectangle(x, y, w, h float64) *Builder {
	return b.push(OpRectangle, num(x), num(y), num(w), num(h))
}

// Stroke/Fill/FillEvenOdd/EndPath paint or discard the current path.
func (b *Builder) Stroke() *Builder     { return b.push(OpStroke) }
func (b *Builder) Fill() *Builder       { return b.push(OpFill) }
func (b *Builder) FillEvenOdd() *Builder { return b.push(OpFillEO) }
func (b *Builder) EndPath() *Builder    { return b.push(OpEndPath) }

// SetLineWidth sets w.
func (b *Builder) SetLineWidth(w float64) *Builder { return b.push(OpSetLineWidth, num(w)) }

// SetFillGray/SetFillRGB/SetFillCMYK/SetStrokeRGB set color (g/rg/k/RG).
func (b *Builder) SetFillGray(gray float64) *Builder { return b.push(OpSetFillGray, num(gray)) }
func (b *Builder) SetFillRGB(r, g, bl float64) *Builder {
	return b.push(OpSetFillRGB, num(r), num(g), num(bl))
}
func (b *Builder) SetFillCMYK(c, m, y, k float64) *Builder {
	return b.push(OpSetFillCMYK, num(c), num(m), num(y), num(k))
}
func (b *Builder) SetStrokeRGB(r, g, bl float64) *Builder {
	return b.push(OpSetStrokeRGB, num(r), num(g), num(bl))
}

// BeginText/EndText wrap a BT/ET text object.
func (b *Builder) BeginText() *Builder { return b.push(OpBeginText) }
func (b *Builder) EndText() *Builder   { return b.push(OpEndText) }

// SetFont sets the font resource name and size (Tf).
func (b *Builder) SetFont(resourceName object.Name, size float64) *Builder {
	return b.push(OpSetFont, name(resourceName), num(size))
}

// TextMoveTo sets the text line origin (Td).
func (b *Builder) TextMoveTo(x, y float64) *Builder { return b.push(OpTextMove, num(x), num(y)) }

// SetLeading sets TL.
func (b *Builder) SetLeading(lead float64) *Builder { return b.push(OpSetLeading, num(lead)) }

// NextLine moves to the next text line using the current leading (T*).
func (b *Builder) NextLine() *Builder { return b.push(OpTextNextLine) }

// ShowText paints a literal string (Tj).
func (b *Builder) ShowText(s string) *Builder {
	return b.push(OpShowText, object.String{Bytes: []byte(s), Form: object.Literal})
}

// XObject invokes a named XObject (Do), after positioning it via Concat.
func (b *Builder) XObject(resourceName object.Name) *Builder {
	return b.push(OpXObject, name(resourceName))
}
