// Package orecl implements a GPU-style compute orchestrator for vectorised arithmetic
// expression evaluation.
//
// A client streams a single-assignment sequence of elementary operations over
// vector-valued variables of a fixed batch size n into a Context. On first use for a
// given calculation identity the Context assembles a device kernel from the opcode
// stream, compiles and caches it, and reuses the cached kernel on every subsequent run
// unless the client bumps the calculation's version. A Context also owns a pool of
// pseudo-random standard-normal variates, grown on demand and shared across all
// calculations run against it.
//
// There is no OpenCL or cgo dependency available to this module, so the "device" is a
// software command queue (see CommandQueue) on which a Go interpreter replays the recorded
// opcode stream lane by lane instead of running real device kernels; the kernel source text is still generated and cached exactly as a
// real OpenCL backend would, so recompilation/reuse behavior is observable and testable
// without a GPU.
package orecl
