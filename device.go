package orecl

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/cpu"
)

// DeviceInfo describes one registered compute device, mirroring the fields
// OpenClFramework's constructor collects per cl_device_id (device_name,
// driver_version, device_version, device_extensions, double-precision support).
type DeviceInfo struct {
	Name           string
	PlatformName   string
	DriverVersion  string
	DeviceVersion  string
	Extensions     string
	SupportsDouble bool
}

// QualifiedName is the registry key, "OpenCL/<platform>/<device>", matching the
// original framework's key("OpenCL/" + platformName + "/" + deviceName).
func (d DeviceInfo) QualifiedName() string {
	return fmt.Sprintf("OpenCL/%s/%s", d.PlatformName, d.Name)
}

// detectExtensions synthesises an extension string from detected CPU SIMD features,
// in the style of a real device_extensions string such as "cl_khr_fp64 cl_khr_global_int32_base_atomics".
// Adapted from cpu_features.go's GetCPUInfo/detectCPUFeatures (see DESIGN.md).
func detectExtensions() string {
	var exts []string
	if cpu.X86.HasSSE41 || cpu.X86.HasSSE42 {
		exts = append(exts, "SSE4")
	}
	if cpu.X86.HasAVX {
		exts = append(exts, "AVX")
	}
	if cpu.X86.HasAVX2 {
		exts = append(exts, "AVX2")
	}
	if cpu.X86.HasFMA {
		exts = append(exts, "FMA3")
	}
	if cpu.X86.HasAVX512F {
		exts = append(exts, "AVX512F")
	}
	if len(exts) == 0 {
		return "none"
	}
	return strings.Join(exts, " ")
}

// Registry holds the set of compute devices available to this process. There is
// exactly one software device in this module; the Registry still models the
// multi-platform/multi-device shape of OpenClFramework so a future backend could
// populate more than one entry without changing the Context API.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]DeviceInfo
}

var defaultRegistry = NewRegistry()

// NewRegistry builds a Registry and enumerates the single software device.
func NewRegistry() *Registry {
	r := &Registry{devices: make(map[string]DeviceInfo)}
	r.Enumerate()
	return r
}

// Enumerate (re)populates the registry. It is idempotent and safe to call more than
// once; a real backend would re-query platform/device ids here.
func (r *Registry) Enumerate() {
	info := DeviceInfo{
		Name:           defaultDeviceName,
		PlatformName:   defaultPlatformName,
		DriverVersion:  "orecl-software-1.0",
		DeviceVersion:  "OpenCL 1.2 (software emulation)",
		Extensions:     detectExtensions(),
		SupportsDouble: true,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[info.QualifiedName()] = info
}

// ByName looks up a device by its qualified name ("OpenCL/Software/CPU"). It returns
// a NoDevice error listing the known device names when name is not registered.
func (r *Registry) ByName(name string) (DeviceInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.devices[name]; ok {
		return info, nil
	}
	return DeviceInfo{}, newNoDeviceError("Registry.ByName", name, r.namesLocked())
}

// Names returns the qualified names of every registered device, sorted for
// deterministic output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.devices))
	for n := range r.devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns the process-wide Registry, built once at package
// initialisation.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
