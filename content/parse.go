package content

import (
	"errors"
	"fmt"

	"github.com/corvuspdf/engine/object"
	"github.com/corvuspdf/engine/objparser"
)

// Parse decodes a content stream's decoded bytes into an operation
// sequence, grounded on reader/parser/content.go's ParseContentElement:
// operands accumulate on a stack until a bare keyword (an
// objparser.Command, since objparser.Parser.ContentStreamMode is set)
// is seen, which flushes the stack into one Operation.
func Parse(data []byte) ([]Operation, error) {
	p := objparser.New(data)
	p.ContentStreamMode = true
	p.Lenient = true

	var ops []Operation
	var stack []object.Object
	for {
		obj, err := p.ParseObject()
		if err != nil {
			if errors.Is(err, objparser.ErrEOF) {
				return ops, nil
			}
			return ops, err
		}

		cmd, ok := obj.(objparser.Command)
		if !ok {
			stack = append(stack, obj)
			continue
		}

		name := string(cmd)
		if name == "BI" {
			img, err := parseInlineImage(p)
			if err != nil {
				return ops, fmt.Errorf("content: inline image: %w", err)
			}
			ops = append(ops, Operation{Op: OpBeginInlineImage, Image: img})
			stack = stack[:0]
			continue
		}

		operands := make([]object.Object, len(stack))
		copy(operands, stack)
		ops = append(ops, Operation{Op: Operator(name), Operands: operands})
		stack = stack[:0]
	}
}
