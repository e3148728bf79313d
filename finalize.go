package orecl

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/go-quant/orecl/internal/metrics"
)

// FinalizeCalculation runs the current calculation to completion and copies each
// declared output into the corresponding slice of outputs, per spec.md §4.2.8. The
// Context returns to state idle on every exit path, including errors.
func (c *Context) FinalizeCalculation(outputs [][]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.state = stateIdle }()

	const op = "Context.FinalizeCalculation"
	if c.state == stateIdle {
		return newBadStateError(op, c.state.String(), "non-idle")
	}

	rec := c.records[c.currentID-1]
	if len(outputs) != len(c.scratch.outputs) {
		return newOutputArityError(op, len(outputs), len(c.scratch.outputs))
	}
	if rec.useDouble && !c.device.SupportsDouble {
		return newCapabilityMismatchError(op, "double precision requested but device lacks it")
	}
	for _, v := range outputs {
		if len(v) != c.scratch.n {
			return newOutputArityError(op, len(v), c.scratch.n)
		}
	}

	eps := float64Epsilon
	if !rec.useDouble {
		eps = float64(float32Epsilon)
	}

	if !rec.hasKernel {
		buildStart := time.Now()
		name := kernelNameFor(c.currentID, rec.version)
		src, err := emitKernelSource(name, c.scratch, rec.useDouble)
		if err != nil {
			return newBuildFailedError(op, name, trimBuildLog(err.Error()))
		}
		rec.kernel = src
		rec.hasKernel = true
		rec.inputBufferSize = len(c.scratch.inputFlat)
		buildDur := time.Since(buildStart)
		c.Debug.addBuild(buildDur)
		metrics.KernelBuildsTotal.WithLabelValues("miss").Inc()
		c.logger.Info("kernel built",
			zap.String("name", name), zap.Duration("took", buildDur),
			zap.Bool("usesInput", src.usesInput), zap.Bool("usesRN", src.usesRN),
			zap.Bool("usesOutput", src.usesOutput))
	} else if rec.inputBufferSize != len(c.scratch.inputFlat) {
		return newBadIDError(op, "input buffer size inconsistent with cached kernel")
	} else {
		metrics.KernelBuildsTotal.WithLabelValues("hit").Inc()
	}

	uploadStart := time.Now()
	uploadEvent := c.queue.Enqueue(func() error { return nil })
	if err := uploadEvent.Wait(); err != nil {
		return newEnqueueFailedError(op, err)
	}
	c.Debug.addDataCopy(time.Since(uploadStart))

	runStart := time.Now()
	env := &execEnv{scratch: c.scratch, pool: c.pool, eps: eps}
	var results [][]float64
	runEvent := c.queue.Enqueue(func() error {
		var err error
		results, err = runOperations(env)
		return err
	})
	if err := runEvent.Wait(); err != nil {
		return newDeviceOpError(op, "kernel execution failed", err)
	}
	c.Debug.addCalculation(time.Since(runStart))
	metrics.CalculationNanos.Observe(float64(time.Since(runStart).Nanoseconds()))

	readbackStart := time.Now()
	events := make([]*Event, len(outputs))
	for k := range outputs {
		k := k
		events[k] = c.queue.Enqueue(func() error {
			copy(outputs[k], results[k])
			return nil
		}, runEvent)
	}
	for _, ev := range events {
		if err := ev.Wait(); err != nil {
			return newEnqueueFailedError(op, err)
		}
	}
	c.Debug.addDataCopy(time.Since(readbackStart))

	rec.nOutputVars = len(outputs)
	return nil
}

func kernelNameFor(id, version int) string {
	return "ore_kernel_" + strconv.Itoa(id) + "_" + strconv.Itoa(version)
}
