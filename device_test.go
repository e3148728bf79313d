package orecl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryEnumeratesSoftwareDevice(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	require.Len(t, names, 1)
	assert.Equal(t, "OpenCL/Software/CPU", names[0])
}

func TestRegistryByNameUnknownFailsWithNoDevice(t *testing.T) {
	r := NewRegistry()
	_, err := r.ByName("OpenCL/GPU/Nvidia")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrKindNoDevice))
	assert.Contains(t, err.Error(), "OpenCL/Software/CPU")
}

func TestDeviceInfoReportsExtensions(t *testing.T) {
	r := NewRegistry()
	info, err := r.ByName("OpenCL/Software/CPU")
	require.NoError(t, err)
	assert.True(t, info.SupportsDouble)
	assert.NotEmpty(t, info.Extensions)
}
