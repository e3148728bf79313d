package orecl

import "math"

// closeEnough mirrors the device kernel's ore_closeEnough(x, y): true when the two
// values agree to within closeEnoughToleranceULPs machine epsilons, with the
// near-zero special case from the original kernel source (see DESIGN.md).
func closeEnough(x, y, eps float64) bool {
	tol := closeEnoughToleranceULPs * eps
	diff := math.Abs(x - y)
	if x == 0 || y == 0 {
		return diff < tol*tol
	}
	return diff <= tol*math.Abs(x) || diff <= tol*math.Abs(y)
}

// indicatorEq / indicatorGt / indicatorGeq mirror the ore_indicator* device helpers.
func indicatorEq(x, y, eps float64) float64 {
	if closeEnough(x, y, eps) {
		return 1
	}
	return 0
}

func indicatorGt(x, y, eps float64) float64 {
	if x > y && !closeEnough(x, y, eps) {
		return 1
	}
	return 0
}

func indicatorGeq(x, y, eps float64) float64 {
	if x > y || closeEnough(x, y, eps) {
		return 1
	}
	return 0
}

// evalOp evaluates op against already-resolved float64 operands, using eps as the
// machine epsilon for the active precision. It is the software device's execution-side
// counterpart to emitRHS: both are driven by the same OpCode enumeration so the
// generated kernel source and the executed arithmetic can never diverge (see
// SPEC_FULL.md §4.4).
func evalOp(op OpCode, args []float64, eps float64) (float64, error) {
	switch op {
	case OpNone:
		return 0, nil
	case OpAdd:
		return args[0] + args[1], nil
	case OpSub:
		return args[0] - args[1], nil
	case OpMul:
		return args[0] * args[1], nil
	case OpDiv:
		return args[0] / args[1], nil
	case OpNeg:
		return -args[0], nil
	case OpIndicatorEq:
		return indicatorEq(args[0], args[1], eps), nil
	case OpIndicatorGt:
		return indicatorGt(args[0], args[1], eps), nil
	case OpIndicatorGeq:
		return indicatorGeq(args[0], args[1], eps), nil
	case OpMin:
		return math.Min(args[0], args[1]), nil
	case OpMax:
		return math.Max(args[0], args[1]), nil
	case OpAbs:
		return math.Abs(args[0]), nil
	case OpExp:
		return math.Exp(args[0]), nil
	case OpSqrt:
		return math.Sqrt(args[0]), nil
	case OpLog:
		return math.Log(args[0]), nil
	case OpPow:
		return math.Pow(args[0], args[1]), nil
	default:
		return 0, newUnknownOpcodeError("evalOp", op)
	}
}

// clampToFloat32Range saturates v to the finite range of float32, matching the
// original's single-precision input clamp (spec.md §4.2.3 / §8 boundary behaviour).
func clampToFloat32Range(v float64) float64 {
	const maxF32 = float64(math.MaxFloat32)
	if v > maxF32 {
		return maxF32
	}
	if v < -maxF32 {
		return -maxF32
	}
	return v
}
