// Package orecl configuration constants.
package orecl

import "time"

// Retry parameters for Context.Init's device-context-creation loop. Exposed as package
// vars (not untyped consts) so tests can shrink them; see spec.md §9.
var (
	// InitRetryAttempts is the maximum number of context-creation attempts before a
	// Context is marked unhealthy.
	InitRetryAttempts = 10
	// InitRetryBackoff is the delay between context-creation attempts.
	InitRetryBackoff = 10 * time.Second
)

// Mersenne-Twister (MT19937) constants.
const (
	mtN        = 624
	mtM        = 397
	mtMatrixA  uint64 = 0x9908b0df
	mtUpperMask uint64 = 0x80000000
	mtLowerMask uint64 = 0x7fffffff
	// mtWordMask keeps MT state words within 32 bits; state is carried in uint64
	// lanes for parity with the ulong-based original kernel source.
	mtWordMask uint64 = 0xffffffff
)

// Numerical tolerance constants.
const (
	// closeEnoughToleranceULPs is the "42*eps" tolerance factor used by
	// ore_closeEnough / ore_indicatorEq / ore_indicatorGt / ore_indicatorGeq.
	closeEnoughToleranceULPs = 42

	// float32Epsilon / float64Epsilon are the machine epsilons used to scale the
	// close-enough tolerance (0x1.0p-23f / 0x1.0p-52 in the original kernel source).
	float32Epsilon = 1.1920929e-07
	float64Epsilon = 2.220446049250313e-16
)

// maxBuildLogLogfile is the offset at which a failed build's log is trimmed: the first
// maxBuildLogLogfile bytes (banner/include-path noise) are dropped and the tail (the
// actual diagnostic) is kept. See DESIGN.md Open Question resolution #3.
const maxBuildLogLogfile = 1024

// defaultPlatformName / defaultDeviceName name this module's single software compute
// device, in the absence of a real OpenCL platform to enumerate.
const (
	defaultPlatformName = "Software"
	defaultDeviceName   = "CPU"
)
