package orecl

import "fmt"

// OpCode identifies an elementary arithmetic operation in the opcode stream. The
// numeric values are stable across client and orchestrator, per spec.md §6.
type OpCode uint8

const (
	OpNone OpCode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpIndicatorEq
	OpIndicatorGt
	OpIndicatorGeq
	OpMin
	OpMax
	OpAbs
	OpExp
	OpSqrt
	OpLog
	OpPow
)

func (op OpCode) String() string {
	switch op {
	case OpNone:
		return "None"
	case OpAdd:
		return "Add"
	case OpSub:
		return "Sub"
	case OpMul:
		return "Mul"
	case OpDiv:
		return "Div"
	case OpNeg:
		return "Neg"
	case OpIndicatorEq:
		return "IndicatorEq"
	case OpIndicatorGt:
		return "IndicatorGt"
	case OpIndicatorGeq:
		return "IndicatorGeq"
	case OpMin:
		return "Min"
	case OpMax:
		return "Max"
	case OpAbs:
		return "Abs"
	case OpExp:
		return "Exp"
	case OpSqrt:
		return "Sqrt"
	case OpLog:
		return "Log"
	case OpPow:
		return "Pow"
	default:
		return fmt.Sprintf("OpCode(%d)", uint8(op))
	}
}

// opArity is the number of arguments each opcode consumes.
var opArity = map[OpCode]int{
	OpNone:         0,
	OpAdd:          2,
	OpSub:          2,
	OpMul:          2,
	OpDiv:          2,
	OpNeg:          1,
	OpIndicatorEq:  2,
	OpIndicatorGt:  2,
	OpIndicatorGeq: 2,
	OpMin:          2,
	OpMax:          2,
	OpAbs:          1,
	OpExp:          1,
	OpSqrt:         1,
	OpLog:          1,
	OpPow:          2,
}

// isKnownOpcode reports whether op is in the supported set.
func isKnownOpcode(op OpCode) bool {
	_, ok := opArity[op]
	return ok
}

// emitRHS renders the textual right-hand side of the SSA assignment for op, given the
// already-resolved source expressions for its arguments. This is the pure translation
// table from spec.md §4.4; it never mutates state and has no knowledge of variable ids.
func emitRHS(op OpCode, args []string) (string, error) {
	switch op {
	case OpNone:
		return "", nil
	case OpAdd:
		return args[0] + " + " + args[1], nil
	case OpSub:
		return args[0] + " - " + args[1], nil
	case OpMul:
		return args[0] + " * " + args[1], nil
	case OpDiv:
		return args[0] + " / " + args[1], nil
	case OpNeg:
		return "-" + args[0], nil
	case OpIndicatorEq:
		return "ore_indicatorEq(" + args[0] + "," + args[1] + ")", nil
	case OpIndicatorGt:
		return "ore_indicatorGt(" + args[0] + "," + args[1] + ")", nil
	case OpIndicatorGeq:
		return "ore_indicatorGeq(" + args[0] + "," + args[1] + ")", nil
	case OpMin:
		return "fmin(" + args[0] + "," + args[1] + ")", nil
	case OpMax:
		return "fmax(" + args[0] + "," + args[1] + ")", nil
	case OpAbs:
		return "fabs(" + args[0] + ")", nil
	case OpExp:
		return "exp(" + args[0] + ")", nil
	case OpSqrt:
		return "sqrt(" + args[0] + ")", nil
	case OpLog:
		return "log(" + args[0] + ")", nil
	case OpPow:
		return "pow(" + args[0] + "," + args[1] + ")", nil
	default:
		return "", newUnknownOpcodeError("emitRHS", op)
	}
}
