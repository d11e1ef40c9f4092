package wcsp

import "fmt"

// FormatError reports a malformed input: a missing token, wrong arity,
// unknown keyword, missing tag, value-name clash, or domain mismatch on
// redeclaration. Every format parser in package formats returns this type
// (wrapped in a plain error) rather than a bare string so that callers can
// use errors.As to recover the offending line/token.
type FormatError struct {
	Line  int    // 1-based line number, 0 if not applicable
	Token string // offending token, if any
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		if e.Token != "" {
			return fmt.Sprintf("format error at line %d near %q: %s", e.Line, e.Token, e.Msg)
		}
		return fmt.Sprintf("format error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("format error: %s", e.Msg)
}

// OverflowError reports that applying the cost multiplier, or summing
// costs, would exceed the representable range.
type OverflowError struct {
	Msg string
}

func (e *OverflowError) Error() string { return fmt.Sprintf("cost overflow: %s", e.Msg) }

// StructuralError reports an attempt to share a cost table with an
// incompatible arity or domain size, or a duplicate tuple in a sparse
// table.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string { return fmt.Sprintf("structural error: %s", e.Msg) }

// Contradiction is the non-local failure signal raised when a builder call
// or a propagation step detects lb >= ub, i.e. the network (or the
// currently explored branch) is infeasible. Parsers must handle it
// gracefully as "infeasible after shift" (spec §4.5); the WCSP-as-constraint
// subsystem catches and re-raises it across the protection guard (spec
// §4.6.5).
type Contradiction struct {
	Msg string
}

func (e *Contradiction) Error() string {
	if e.Msg == "" {
		return "contradiction: lb >= ub"
	}
	return fmt.Sprintf("contradiction: %s", e.Msg)
}
