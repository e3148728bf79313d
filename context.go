package orecl

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/go-quant/orecl/internal/metrics"
)

// contextState is one of the four states of spec.md §4.2's state machine.
type contextState int

const (
	stateIdle contextState = iota
	stateCreateInput
	stateCreateVariates
	stateCalc
)

func (s contextState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCreateInput:
		return "createInput"
	case stateCreateVariates:
		return "createVariates"
	case stateCalc:
		return "calc"
	default:
		return "unknown"
	}
}

// Settings configures one calculation's evaluation, per spec.md §3.
type Settings struct {
	UseDoublePrecision bool
	RNGSeed            uint64
	Debug              bool
}

// calcRecord is the persistent per-id bookkeeping spec.md §3 calls the "calculation
// record": {n, version, disposed, hasKernel, program, kernel, inputBufferSize,
// nOutputVars}. The compiled kernel source is cached here so a repeated (id, version)
// skips rebuild; the op stream is not cached and is replayed from scratch on every run.
type calcRecord struct {
	n               int
	version         int
	disposed        bool
	hasKernel       bool
	kernel          kernelSource
	inputBufferSize int
	nOutputVars     int
	nVariates       int
	useDouble       bool
}

// Context is the central state machine of this package: it owns one device, its
// command queue, the shared variate pool, and the per-calculation kernel cache.
// It is the Go analogue of OpenClContext, adapted from guda.Context/guda.Stream's
// init/teardown shape (see DESIGN.md).
type Context struct {
	mu sync.Mutex

	device DeviceInfo
	queue  *CommandQueue

	initialized bool
	healthy     bool
	initErr     error

	state   contextState
	records []*calcRecord // 1-based: records[id-1]

	scratch   *calcScratch
	currentID int
	settings  Settings

	pool *variatePool

	Debug      DebugInfo
	deviceInfo DeviceInfoReport

	logger *zap.Logger
}

// NewContext constructs an uninitialised Context bound to device. Call Init before
// first use; every other method fails with BadState or a health error until then.
// Logging defaults to a no-op logger; use SetLogger to attach a real one.
func NewContext(device DeviceInfo) *Context {
	return &Context{
		device: device,
		queue:  NewCommandQueue(0),
		state:  stateIdle,
		logger: zap.NewNop(),
	}
}

// SetLogger attaches l as this Context's diagnostic logger. A nil l restores the
// no-op default.
func (c *Context) SetLogger(l *zap.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	c.logger = l
}

// Init creates the device context and command queue, retrying up to
// InitRetryAttempts times with InitRetryBackoff between attempts on failure. It is a
// no-op if already initialised. On final failure the Context is marked permanently
// unhealthy: every subsequent Init or InitiateCalculation call fails with DeviceInit,
// and the other calculation methods fail with BadState since no calculation can start.
func (c *Context) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if c.initErr != nil {
		return c.initErr
	}

	var err error
	for attempt := 0; attempt < InitRetryAttempts; attempt++ {
		if err = c.createDeviceContext(); err == nil {
			break
		}
		c.logger.Warn("device context creation failed, retrying",
			zap.Int("attempt", attempt+1), zap.Error(err))
		if attempt < InitRetryAttempts-1 {
			time.Sleep(InitRetryBackoff)
		}
	}
	if err != nil {
		c.healthy = false
		c.initErr = newDeviceInitError("Context.Init", err)
		c.logger.Warn("context init permanently failed", zap.Error(c.initErr))
		return c.initErr
	}

	c.initialized = true
	c.healthy = true
	c.runHealthChecks()
	c.logger.Info("context initialised", zap.String("device", c.device.QualifiedName()))
	return nil
}

// createDeviceContext is the software device's trivial analogue of
// clCreateContext/clCreateCommandQueue: there is no real device to lose contact
// with, so it only fails if the bound device is unknown to the registry.
func (c *Context) createDeviceContext() error {
	if c.device.Name == "" {
		return newError(ErrKindDeviceInit, "Context.createDeviceContext", "no device bound")
	}
	return nil
}

// runHealthChecks probes host/device type sizes through the command queue, the
// software equivalent of runHealthCheckProgram's tiny sizeof() kernels.
func (c *Context) runHealthChecks() {
	ev := c.queue.Enqueue(func() error { return nil })
	_ = ev.Wait()
	c.deviceInfo = DeviceInfoReport{
		Platform:       c.device.PlatformName,
		DriverVersion:  c.device.DriverVersion,
		DeviceVersion:  c.device.DeviceVersion,
		Extensions:     c.device.Extensions,
		SupportsDouble: c.device.SupportsDouble,
		Sizes:          probeDeviceSizes(),
	}
}

// DeviceInfo returns the diagnostic device report gathered at Init.
func (c *Context) DeviceInfo() DeviceInfoReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceInfo
}

func (c *Context) assertHealthy(op string) error {
	if !c.initialized && c.initErr == nil {
		return newBadStateError(op, "uninitialised", "initialised")
	}
	if !c.healthy {
		return newDeviceInitError(op, c.initErr)
	}
	return nil
}

func (c *Context) assertState(op string, want ...contextState) error {
	for _, w := range want {
		if c.state == w {
			return nil
		}
	}
	return newBadStateError(op, c.state.String(), want[0].String())
}

// InitiateCalculation starts or resumes a calculation, per spec.md §4.2.2.
// id == 0 allocates a new record and returns fresh = true. A non-zero id must refer
// to a live, non-disposed record of matching n; a differing version forces a
// rebuild (fresh = true) and releases the cached kernel.
func (c *Context) InitiateCalculation(n, id, version int, settings Settings) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "Context.InitiateCalculation"
	if err := c.assertHealthy(op); err != nil {
		return 0, false, err
	}
	if err := c.assertState(op, stateIdle); err != nil {
		return 0, false, err
	}
	if n < 1 {
		return 0, false, newBadIDError(op, "n must be >= 1")
	}

	fresh := false
	var rec *calcRecord

	if id == 0 {
		rec = &calcRecord{n: n, version: version}
		c.records = append(c.records, rec)
		id = len(c.records)
		fresh = true
	} else {
		if id < 1 || id > len(c.records) {
			return 0, false, newBadIDError(op, "unknown calculation id")
		}
		rec = c.records[id-1]
		if rec.disposed {
			return 0, false, newBadIDError(op, "calculation id is disposed")
		}
		if rec.n != n {
			return 0, false, newBadIDError(op, "calculation id size mismatch")
		}
		if rec.version != version || rec.useDouble != settings.UseDoublePrecision {
			rec.version = version
			rec.hasKernel = false
			fresh = true
		}
	}
	rec.useDouble = settings.UseDoublePrecision

	c.scratch = newCalcScratch(n)
	c.currentID = id
	c.settings = settings
	c.state = stateCreateInput

	return id, fresh, nil
}

// CreateInputVariable appends a scalar input and returns its variable id.
func (c *Context) CreateInputVariable(v float64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	const op = "Context.CreateInputVariable"
	if err := c.assertState(op, stateCreateInput); err != nil {
		return 0, err
	}
	if !c.settings.UseDoublePrecision {
		v = clampToFloat32Range(v)
	}
	return c.scratch.addInputScalar(v), nil
}

// CreateInputVariableVector appends a vector input of length n and returns its id.
func (c *Context) CreateInputVariableVector(v []float64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	const op = "Context.CreateInputVariableVector"
	if err := c.assertState(op, stateCreateInput); err != nil {
		return 0, err
	}
	if len(v) != c.scratch.n {
		return 0, newBadIDError(op, "vector input length must equal n")
	}
	vals := v
	if !c.settings.UseDoublePrecision {
		vals = make([]float64, len(v))
		for i, x := range v {
			vals[i] = clampToFloat32Range(x)
		}
	}
	return c.scratch.addInputVector(vals), nil
}

// CreateInputVariates allocates dim*steps variate ids and ensures the shared pool
// can supply them, per spec.md §4.2.4. A rerun of a calculation whose kernel is
// already cached must replay this call identically to repopulate scratch's variate
// range (FinalizeCalculation always re-executes the live scratch, never the cached
// kernel directly — see kernel.go), so a cached kernel only forbids a *differing*
// dim*steps from the layout it was built with, not a repeat of the same one.
func (c *Context) CreateInputVariates(dim, steps int) ([][]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	const op = "Context.CreateInputVariates"
	if err := c.assertState(op, stateCreateInput, stateCreateVariates); err != nil {
		return nil, err
	}
	rec := c.records[c.currentID-1]
	if rec.hasKernel && dim*steps != rec.nVariates {
		return nil, newBadStateError(op, "variate count differs from the cached kernel's layout", "matching variate count")
	}

	ids := make([][]int, dim)
	for i := range ids {
		ids[i] = make([]int, steps)
	}
	if dim > 0 && steps > 0 {
		first := c.scratch.reserveVariates(dim * steps)
		next := first
		for j := 0; j < steps; j++ {
			for i := 0; i < dim; i++ {
				ids[i][j] = next
				next++
			}
		}
		if c.pool == nil {
			c.pool = newVariatePool(c.settings.RNGSeed, c.settings.UseDoublePrecision)
		}
		before := c.pool.size()
		c.pool.ensure(c.scratch.nVariates * c.scratch.n)
		if c.pool.size() != before {
			c.logger.Info("variate pool grown",
				zap.Int("from", before), zap.Int("to", c.pool.size()))
		}
		metrics.VariatePoolSize.Set(float64(c.pool.size()))
	}
	rec.nVariates = dim * steps
	c.state = stateCreateVariates
	return ids, nil
}

// ApplyOperation resolves args and records one opcode-stream step, returning the
// result variable id.
func (c *Context) ApplyOperation(opc OpCode, args []int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	const op = "Context.ApplyOperation"
	if err := c.assertState(op, stateCreateInput, stateCreateVariates, stateCalc); err != nil {
		return 0, err
	}
	if !isKnownOpcode(opc) {
		return 0, newUnknownOpcodeError(op, opc)
	}
	if len(args) != opArity[opc] {
		return 0, newError(ErrKindUnknownOpcode, op, "argument count does not match opcode arity")
	}
	id := c.scratch.recordOperation(opc, args)
	if c.settings.Debug {
		c.Debug.addOperations(c.scratch.n)
	}
	metrics.OperationsTotal.Inc()
	c.state = stateCalc
	return id, nil
}

// FreeVariable marks id reusable for a future intermediate result. Per spec.md's
// state transition table, freeVariable is only permitted from state calc, i.e. after
// at least one operation has been recorded. It is forbidden
// once the current (id, version)'s kernel already exists: unlike applyOperation/
// declareOutputVariable, a rerun of a cached calculation is not expected to replay
// freeVariable calls, matching the original's QL_REQUIRE(!hasKernel_[...]).
func (c *Context) FreeVariable(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	const op = "Context.FreeVariable"
	if err := c.assertState(op, stateCalc); err != nil {
		return err
	}
	rec := c.records[c.currentID-1]
	if rec.hasKernel {
		return newBadStateError(op, "kernel already built", "no cached kernel")
	}
	c.scratch.free(id)
	return nil
}

// DeclareOutputVariable appends id to the output list of the current calculation.
func (c *Context) DeclareOutputVariable(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	const op = "Context.DeclareOutputVariable"
	if c.state == stateIdle {
		return newBadStateError(op, c.state.String(), "non-idle")
	}
	c.scratch.declareOutput(id)
	return nil
}

// DisposeCalculation releases a calculation's cached kernel and marks it disposed.
// Double disposal fails with BadId.
func (c *Context) DisposeCalculation(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	const op = "Context.DisposeCalculation"
	if id < 1 || id > len(c.records) {
		return newBadIDError(op, "unknown calculation id")
	}
	rec := c.records[id-1]
	if rec.disposed {
		return newBadIDError(op, "calculation already disposed")
	}
	rec.disposed = true
	rec.hasKernel = false
	rec.kernel = kernelSource{}
	c.logger.Info("calculation disposed", zap.Int("id", id))
	return nil
}
