// Package service implements the business logic layer: instance
// lifecycle, the model catalog, log retrieval, and account flows.
package service

import (
	"fmt"

	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

// Instance types that need GPU capacity. They run on EC2 with the GPU
// task definition and get pinned to a matching container instance.
var gpuInstanceTypes = map[string]bool{
	"ml.g4dn.xlarge":  true,
	"ml.g4dn.2xlarge": true,
	"ml.p3.2xlarge":   true,
}

// Large CPU types also run on EC2 so they can be pinned, but keep the
// CPU task definition.
var largeCPUInstanceTypes = map[string]bool{
	"ml.m5.2xlarge": true,
	"ml.m5.4xlarge": true,
	"ml.c5.4xlarge": true,
}

var hourlyCost = map[string]string{
	"ml.m5.large":     "$0.12/hour",
	"ml.m5.xlarge":    "$0.24/hour",
	"ml.m5.2xlarge":   "$0.48/hour",
	"ml.g4dn.xlarge":  "$0.71/hour",
	"ml.g4dn.2xlarge": "$1.42/hour",
	"ml.p3.2xlarge":   "$3.06/hour",
}

// DefaultInstanceType is used when a request does not name one.
const DefaultInstanceType = "ml.m5.large"

// DeploymentProfile describes how an instance of a given type lands
// on ECS.
type DeploymentProfile struct {
	LaunchType ecstypes.LaunchType
	// UseGPUTaskDef selects the GPU task definition over the CPU one.
	UseGPUTaskDef bool
	// PinToInstanceType adds a memberOf placement constraint binding
	// the task to container instances of the requested type.
	PinToInstanceType bool
}

// ProfileFor maps an instance type onto its deployment profile.
// Unrecognized types fall back to Fargate with the CPU task
// definition.
func ProfileFor(instanceType string) DeploymentProfile {
	switch {
	case gpuInstanceTypes[instanceType]:
		return DeploymentProfile{
			LaunchType:        ecstypes.LaunchTypeEc2,
			UseGPUTaskDef:     true,
			PinToInstanceType: true,
		}
	case largeCPUInstanceTypes[instanceType]:
		return DeploymentProfile{
			LaunchType:        ecstypes.LaunchTypeEc2,
			PinToInstanceType: true,
		}
	default:
		return DeploymentProfile{LaunchType: ecstypes.LaunchTypeFargate}
	}
}

// PlacementConstraints returns the memberOf constraint for pinned
// profiles, nil otherwise.
func (p DeploymentProfile) PlacementConstraints(instanceType string) []ecstypes.PlacementConstraint {
	if !p.PinToInstanceType {
		return nil
	}
	expr := fmt.Sprintf("attribute:ecs.instance-type == %s", instanceType)
	return []ecstypes.PlacementConstraint{
		{
			Type:       ecstypes.PlacementConstraintTypeMemberOf,
			Expression: &expr,
		},
	}
}

// EstimateCost returns the display cost for an instance type.
// Unknown types report $0.00/hour rather than failing the request.
func EstimateCost(instanceType string) string {
	if cost, ok := hourlyCost[instanceType]; ok {
		return cost
	}
	return "$0.00/hour"
}
