package orecl

import "time"

// DebugInfo accumulates performance counters across every calculation run on a
// Context, for attribution of time spent in each phase of finalizeCalculation.
type DebugInfo struct {
	NumberOfOperations int64
	NanosDataCopy      int64
	NanosProgramBuild  int64
	NanosCalculation   int64
}

func (d *DebugInfo) addOperations(n int)          { d.NumberOfOperations += int64(n) }
func (d *DebugInfo) addDataCopy(dur time.Duration) { d.NanosDataCopy += dur.Nanoseconds() }
func (d *DebugInfo) addBuild(dur time.Duration)    { d.NanosProgramBuild += dur.Nanoseconds() }
func (d *DebugInfo) addCalculation(dur time.Duration) {
	d.NanosCalculation += dur.Nanoseconds()
}

// deviceSizeProbe is the simulated analogue of the tiny on-device sizeof() kernels
// runHealthChecks builds; sizes are fixed by Go's numeric types rather than queried
// from a real compiler, but are still threaded through a queue Enqueue/Wait round
// trip so Context.Init exercises the same asynchronous probe-and-wait shape as a
// real OpenCL backend (see context.go's runHealthChecks).
type deviceSizeProbe struct {
	UintSize   int
	UlongSize  int
	FloatSize  int
	DoubleSize int
}

func probeDeviceSizes() deviceSizeProbe {
	return deviceSizeProbe{UintSize: 4, UlongSize: 8, FloatSize: 4, DoubleSize: 8}
}

// DeviceInfoReport is the key-value diagnostic bundle exposed alongside DebugInfo:
// platform/driver/device versions, extensions, and the probed host/device type
// sizes, matching spec.md §6's "deviceInfo key-value list".
type DeviceInfoReport struct {
	Platform       string
	DriverVersion  string
	DeviceVersion  string
	Extensions     string
	SupportsDouble bool
	Sizes          deviceSizeProbe
}
