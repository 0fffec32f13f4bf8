package content

import "github.com/corvuspdf/engine/object"

// Color is a resolved fill or stroke color. Space names the active
// colorspace ("DeviceGray", "DeviceRGB", "DeviceCMYK", or a resource
// name for an indexed/ICC/pattern space); Components holds the raw
// operand values as given to SC/sc/SCN/scn (spec.md §4.5 Non-goals:
// colorspace resolution into a canonical RGB is out of scope).
type Color struct {
	Space      object.Name
	Components []float64
}

// GraphicsState is the subset of the PDF graphics state this engine
// tracks (PDF 1.7 §8.4), saved and restored by q/Q.
type GraphicsState struct {
	CTM         Matrix
	LineWidth   float64
	LineCap     int
	LineJoin    int
	MiterLimit  float64
	Dash        []float64
	DashPhase   float64
	FillColor   Color
	StrokeColor Color
	// FillAlpha and StrokeAlpha are not set by any operator (gs is not
	// interpreted), so they keep their zero value.
	FillAlpha   float64
	StrokeAlpha float64

	Text TextState
}

// TextState is the PDF text state (PDF 1.7 §9.3). BT resets only Matrix
// and LineMatrix; the other fields persist across text objects within a
// q/Q scope.
type TextState struct {
	CharSpacing  float64
	WordSpacing  float64
	HorizScale   float64 // Tz, percent; 100 is unscaled
	Leading      float64
	Font         object.Name
	FontSize     float64
	RenderMode   int
	Rise         float64

	Matrix     Matrix // Tm
	LineMatrix Matrix // set by Td/TD/T*, copied into Matrix
}

func newGraphicsState() GraphicsState {
	return GraphicsState{
		CTM:        Identity,
		LineWidth:  1,
		MiterLimit: 10,
		Text:       TextState{HorizScale: 100, Matrix: Identity, LineMatrix: Identity},
	}
}

// Interpreter runs an operation sequence, maintaining the graphics and
// text state stack (q/Q) and calling back into Visit for operations a
// caller cares about, grounded on the teacher's ParseContentElement
// dispatch loop but generalized into a push-based state machine instead
// of one return value per call, since a content stream's effect is
// cumulative rather than one operation at a time.
type Interpreter struct {
	state GraphicsState
	stack []GraphicsState

	// Visit is called for every operation after the state machine has
	// applied its effect, so a callback can read the now-current state
	// (e.g. to record a glyph's device-space position).
	Visit func(op Operation, state GraphicsState)
}

// NewInterpreter returns an Interpreter with the identity CTM and
// default graphics state (PDF 1.7 §8.4.1's initial values).
func NewInterpreter() *Interpreter {
	return &Interpreter{state: newGraphicsState()}
}

// State returns the current graphics state.
func (in *Interpreter) State() GraphicsState { return in.state }

// AdvanceTextMatrix applies a text-space horizontal translation to the
// live text matrix, for callers (package content's text extraction and
// any future authoring pass) that compute a shown string's displacement
// from font metrics the interpreter itself has no knowledge of (spec.md
// §4.5 "After Tj, the text matrix advances by the consumed string's
// displacement"). Must be called from inside Visit, before the next
// operation steps.
func (in *Interpreter) AdvanceTextMatrix(tx float64) {
	in.state.Text.Matrix = Matrix{A: 1, D: 1, E: tx}.Mul(in.state.Text.Matrix)
}

// Run applies every operation in ops in order.
func (in *Interpreter) Run(ops []Operation) {
	for _, op := range ops {
		in.step(op)
	}
}

func (in *Interpreter) step(op Operation) {
	switch op.Op {
	case OpSaveState:
		in.stack = append(in.stack, in.state)
	case OpRestoreState:
		if n := len(in.stack); n > 0 {
			in.state = in.stack[n-1]
			in.stack = in.stack[:n-1]
		}
	case OpConcat:
		if len(op.Operands) == 6 {
			m := matrixFromOperands(op.Operands)
			in.state.CTM = m.Mul(in.state.CTM)
		}
	case OpSetLineWidth:
		in.state.LineWidth = op.num(0)
	case OpSetLineCap:
		in.state.LineCap = int(op.num(0))
	case OpSetLineJoin:
		in.state.LineJoin = int(op.num(0))
	case OpSetMiterLimit:
		in.state.MiterLimit = op.num(0)
	case OpSetDash:
		if arr, ok := object.AsArray(opOrNil(op, 0)); ok {
			in.state.Dash = nil
			for _, v := range arr {
				n, _ := object.AsNumber(v)
				in.state.Dash = append(in.state.Dash, n)
			}
		}
		in.state.DashPhase = op.num(1)
	case OpSetStrokeGray:
		in.state.StrokeColor = Color{Space: "DeviceGray", Components: []float64{op.num(0)}}
	case OpSetFillGray:
		in.state.FillColor = Color{Space: "DeviceGray", Components: []float64{op.num(0)}}
	case OpSetStrokeRGB:
		in.state.StrokeColor = Color{Space: "DeviceRGB", Components: operandFloats(op)}
	case OpSetFillRGB:
		in.state.FillColor = Color{Space: "DeviceRGB", Components: operandFloats(op)}
	case OpSetStrokeCMYK:
		in.state.StrokeColor = Color{Space: "DeviceCMYK", Components: operandFloats(op)}
	case OpSetFillCMYK:
		in.state.FillColor = Color{Space: "DeviceCMYK", Components: operandFloats(op)}
	case OpSetStrokeCS:
		in.state.StrokeColor = Color{Space: op.name(0)}
	case OpSetFillCS:
		in.state.FillColor = Color{Space: op.name(0)}
	case OpSetStrokeColor, OpSetStrokeColorN:
		in.state.StrokeColor.Components = operandFloatsUpTo(op, lastNonName(op))
	case OpSetFillColor, OpSetFillColorN:
		in.state.FillColor.Components = operandFloatsUpTo(op, lastNonName(op))

	case OpBeginText:
		in.state.Text.Matrix = Identity
		in.state.Text.LineMatrix = Identity
	case OpSetCharSpacing:
		in.state.Text.CharSpacing = op.num(0)
	case OpSetWordSpacing:
		in.state.Text.WordSpacing = op.num(0)
	case OpSetHorizScale:
		in.state.Text.HorizScale = op.num(0)
	case OpSetLeading:
		in.state.Text.Leading = op.num(0)
	case OpSetFont:
		in.state.Text.Font = op.name(0)
		in.state.Text.FontSize = op.num(1)
	case OpSetTextRender:
		in.state.Text.RenderMode = int(op.num(0))
	case OpSetTextRise:
		in.state.Text.Rise = op.num(0)
	case OpTextMove:
		tx, ty := op.num(0), op.num(1)
		in.state.Text.LineMatrix = Matrix{A: 1, D: 1, E: tx, F: ty}.Mul(in.state.Text.LineMatrix)
		in.state.Text.Matrix = in.state.Text.LineMatrix
	case OpTextMoveSet:
		in.state.Text.Leading = -op.num(1)
		tx, ty := op.num(0), op.num(1)
		in.state.Text.LineMatrix = Matrix{A: 1, D: 1, E: tx, F: ty}.Mul(in.state.Text.LineMatrix)
		in.state.Text.Matrix = in.state.Text.LineMatrix
	case OpSetTextMatrix:
		if len(op.Operands) == 6 {
			m := matrixFromOperands(op.Operands)
			in.state.Text.LineMatrix = m
			in.state.Text.Matrix = m
		}
	case OpTextNextLine:
		in.state.Text.LineMatrix = Matrix{A: 1, D: 1, F: -in.state.Text.Leading}.Mul(in.state.Text.LineMatrix)
		in.state.Text.Matrix = in.state.Text.LineMatrix
	case OpMoveShowText:
		// ' is exactly T* followed by Tj (PDF 1.7 §9.4.3 Table 108).
		in.state.Text.LineMatrix = Matrix{A: 1, D: 1, F: -in.state.Text.Leading}.Mul(in.state.Text.LineMatrix)
		in.state.Text.Matrix = in.state.Text.LineMatrix
	case OpMoveSetShowText:
		// " sets word/char spacing, then behaves like ' (PDF 1.7 §9.4.3).
		in.state.Text.WordSpacing = op.num(0)
		in.state.Text.CharSpacing = op.num(1)
		in.state.Text.LineMatrix = Matrix{A: 1, D: 1, F: -in.state.Text.Leading}.Mul(in.state.Text.LineMatrix)
		in.state.Text.Matrix = in.state.Text.LineMatrix
	}

	if in.Visit != nil {
		in.Visit(op, in.state)
	}
}

func matrixFromOperands(ops []object.Object) Matrix {
	v := make([]float64, 6)
	for i := 0; i < 6 && i < len(ops); i++ {
		v[i], _ = object.AsNumber(ops[i])
	}
	return Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
}

func opOrNil(op Operation, i int) object.Object {
	if i < 0 || i >= len(op.Operands) {
		return object.Null{}
	}
	return op.Operands[i]
}

func operandFloats(op Operation) []float64 {
	out := make([]float64, len(op.Operands))
	for i := range op.Operands {
		out[i] = op.num(i)
	}
	return out
}

// lastNonName finds the index just past the trailing numeric operands,
// excluding a final pattern-name operand SCN/scn may carry (PDF 1.7
// §8.6.8 "c1 ... cn name scn").
func lastNonName(op Operation) int {
	n := len(op.Operands)
	if n > 0 {
		if _, ok := object.AsName(op.Operands[n-1]); ok {
			return n - 1
		}
	}
	return n
}

func operandFloatsUpTo(op Operation, n int) []float64 {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, op.num(i))
	}
	return out
}
