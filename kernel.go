package orecl

import (
	"fmt"
	"strings"
	"sync"
)

// opErrGuard captures the first error raised by any lane of a parallel kernel
// execution; ParallelFor's workers race to report it, so access is mutex-guarded.
type opErrGuard struct {
	mu  sync.Mutex
	err error
}

func (g *opErrGuard) set(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err == nil {
		g.err = err
	}
}

func (g *opErrGuard) get() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// kernelSource is the assembled, device-ready text of a compiled calculation: the
// helper prelude, the kernel signature (with unused buffer classes omitted), and the
// guarded SSA body followed by the output-assignment block. Only the source actually
// changes shape between builds; re-running an already-built (id, version) never
// regenerates it (see FinalizeCalculation in finalize.go).
type kernelSource struct {
	name       string
	text       string
	usesInput  bool
	usesRN     bool
	usesOutput bool
}

const kernelPrelude = `
inline double ore_closeEnough(double x, double y) {
    double tol = 42.0 * ORE_EPS;
    double diff = fabs(x - y);
    if (x == 0.0 || y == 0.0) return diff < tol * tol;
    return diff <= tol * fabs(x) || diff <= tol * fabs(y);
}
inline double ore_indicatorEq(double x, double y)  { return ore_closeEnough(x, y) ? 1.0 : 0.0; }
inline double ore_indicatorGt(double x, double y)  { return (x > y && !ore_closeEnough(x, y)) ? 1.0 : 0.0; }
inline double ore_indicatorGeq(double x, double y) { return (x > y || ore_closeEnough(x, y)) ? 1.0 : 0.0; }
`

// resolveArgText renders the kernel-source expression for argument id, per the
// resolution rules of spec.md §4.2.5: input scalar/vector, variate, or intermediate.
func resolveArgText(id int, s *calcScratch) string {
	nInputs := s.nInputs()
	switch {
	case id < nInputs:
		d := s.inputs[id]
		if d.isScalar {
			return "input[" + fmt.Sprint(d.offset) + "]"
		}
		return "input[" + fmt.Sprint(d.offset) + " + i]"
	case id < nInputs+s.nVariates:
		rel := id - nInputs
		return fmt.Sprintf("rn[%dU * n + i]", rel)
	default:
		return "v" + fmt.Sprint(id)
	}
}

// emitKernelSource assembles the full device source for the calculation currently
// recorded in s, following finalizeCalculation's step 2 exactly: prelude, signature
// over only the buffer classes actually referenced, a bounds guard, the SSA body,
// and the output-assignment block.
func emitKernelSource(name string, s *calcScratch, useDouble bool) (kernelSource, error) {
	scalarType := "float"
	if useDouble {
		scalarType = "double"
	}

	var body strings.Builder
	for _, op := range s.ops {
		args := make([]string, len(op.args))
		for i, a := range op.args {
			args[i] = resolveArgText(a, s)
		}
		rhs, err := emitRHS(op.op, args)
		if err != nil {
			return kernelSource{}, err
		}
		if op.op == OpNone {
			continue
		}
		if op.redeclared {
			fmt.Fprintf(&body, "v%d = %s;\n", op.resultID, rhs)
		} else {
			fmt.Fprintf(&body, "%s v%d = %s;\n", scalarType, op.resultID, rhs)
		}
	}

	for k, outID := range s.outputs {
		fmt.Fprintf(&body, "output[%dU * n + i] = %s;\n", k, resolveArgText(outID, s))
	}

	usesInput := s.nInputs() > 0
	usesRN := s.nVariates > 0
	usesOutput := len(s.outputs) > 0

	var params []string
	if usesInput {
		params = append(params, scalarType+" *input")
	}
	if usesRN {
		params = append(params, "double *rn")
	}
	if usesOutput {
		params = append(params, scalarType+" *output")
	}
	params = append(params, "uint n")

	epsLiteral := "0x1.0p-23"
	if useDouble {
		epsLiteral = "0x1.0p-52"
	}

	var src strings.Builder
	fmt.Fprintf(&src, "#define ORE_EPS %s\n", epsLiteral)
	src.WriteString(kernelPrelude)
	fmt.Fprintf(&src, "__kernel void %s(%s) {\n", name, strings.Join(params, ", "))
	src.WriteString("  uint i = get_global_id(0);\n")
	src.WriteString("  if (i < n) {\n")
	src.WriteString(body.String())
	src.WriteString("  }\n}\n")

	return kernelSource{
		name:       name,
		text:       src.String(),
		usesInput:  usesInput,
		usesRN:     usesRN,
		usesOutput: usesOutput,
	}, nil
}

// trimBuildLog keeps the tail of a failed build's diagnostic log, dropping the first
// maxBuildLogLogfile bytes of banner/include-path noise. This mirrors the original
// source's buffer.substr(MAX_BUILD_LOG_LOGFILE) exactly; see DESIGN.md Open Question
// resolution #3 for why the tail (not the head) is kept.
func trimBuildLog(log string) string {
	if len(log) <= maxBuildLogLogfile {
		return log
	}
	return log[maxBuildLogLogfile:]
}

// execEnv bundles everything runOperations needs to evaluate one lane of the batch.
type execEnv struct {
	scratch *calcScratch
	pool    *variatePool
	eps     float64
}

// resolveArgValue evaluates argument id for lane i, using the same resolution rules
// as resolveArgText but against real numbers instead of source text.
func resolveArgValue(id, i int, env *execEnv, vals map[int]float64) float64 {
	s := env.scratch
	nInputs := s.nInputs()
	switch {
	case id < nInputs:
		d := s.inputs[id]
		if d.isScalar {
			return s.inputFlat[d.offset]
		}
		return s.inputFlat[d.offset+i]
	case id < nInputs+s.nVariates:
		rel := id - nInputs
		return env.pool.at(rel*s.n + i)
	default:
		return vals[id]
	}
}

// runOperations executes the recorded opcode stream once per lane across
// ParallelFor, filling one result column per declared output. This is the software
// device's "kernel launch": identical numerical semantics to emitKernelSource's
// generated text, driven by the same operation stream and the same evalOp/emitRHS
// opcode tables so the two can never diverge.
func runOperations(env *execEnv) ([][]float64, error) {
	s := env.scratch
	outputs := make([][]float64, len(s.outputs))
	for k := range outputs {
		outputs[k] = make([]float64, s.n)
	}

	var opErr error
	var mu opErrGuard
	ParallelFor(s.n, func(i int) {
		vals := make(map[int]float64, len(s.ops))
		for _, op := range s.ops {
			args := make([]float64, len(op.args))
			for j, a := range op.args {
				args[j] = resolveArgValue(a, i, env, vals)
			}
			v, err := evalOp(op.op, args, env.eps)
			if err != nil {
				mu.set(err)
				return
			}
			vals[op.resultID] = v
		}
		for k, outID := range s.outputs {
			outputs[k][i] = resolveArgValue(outID, i, env, vals)
		}
	})
	if err := mu.get(); err != nil {
		opErr = err
	}
	return outputs, opErr
}
