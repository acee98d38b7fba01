package compute

import (
	"fmt"

	"github.com/microsoft/morphcharts-sub000/tracer/kernel"
)

type kernelType uint8

// The list of kernels that implement the tracer.
const (
	// utils
	clearAccumulator kernelType = iota
	depthRange
	// pt kernels
	integrate
	// post-processing kernels
	edgeDetect
	resolve
	//
	numKernels
)

// Implements Stringer; map kernel type to the registered kernel name.
func (kt kernelType) String() string {
	switch kt {
	case clearAccumulator:
		return kernel.ClearAccumulator
	case depthRange:
		return kernel.DepthRange
	case integrate:
		return kernel.Integrate
	case edgeDetect:
		return kernel.EdgeDetect
	case resolve:
		return kernel.Resolve
	}

	panic(fmt.Sprintf("Unsupported kernel type: %d", kt))
}
