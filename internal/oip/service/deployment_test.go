package service

import (
	"testing"

	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		instanceType string
		launchType   ecstypes.LaunchType
		gpu          bool
		pinned       bool
	}{
		{"ml.m5.large", ecstypes.LaunchTypeFargate, false, false},
		{"ml.m5.xlarge", ecstypes.LaunchTypeFargate, false, false},
		{"ml.m5.2xlarge", ecstypes.LaunchTypeEc2, false, true},
		{"ml.m5.4xlarge", ecstypes.LaunchTypeEc2, false, true},
		{"ml.c5.4xlarge", ecstypes.LaunchTypeEc2, false, true},
		{"ml.g4dn.xlarge", ecstypes.LaunchTypeEc2, true, true},
		{"ml.g4dn.2xlarge", ecstypes.LaunchTypeEc2, true, true},
		{"ml.p3.2xlarge", ecstypes.LaunchTypeEc2, true, true},
		{"t3.micro", ecstypes.LaunchTypeFargate, false, false},
		{"", ecstypes.LaunchTypeFargate, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.instanceType, func(t *testing.T) {
			profile := ProfileFor(tt.instanceType)
			assert.Equal(t, tt.launchType, profile.LaunchType)
			assert.Equal(t, tt.gpu, profile.UseGPUTaskDef)
			assert.Equal(t, tt.pinned, profile.PinToInstanceType)
		})
	}
}

func TestPlacementConstraints(t *testing.T) {
	pinned := ProfileFor("ml.g4dn.xlarge")
	constraints := pinned.PlacementConstraints("ml.g4dn.xlarge")
	require.Len(t, constraints, 1)
	assert.Equal(t, ecstypes.PlacementConstraintTypeMemberOf, constraints[0].Type)
	assert.Equal(t, "attribute:ecs.instance-type == ml.g4dn.xlarge", *constraints[0].Expression)

	fargate := ProfileFor("ml.m5.large")
	assert.Nil(t, fargate.PlacementConstraints("ml.m5.large"))
}

func TestEstimateCost(t *testing.T) {
	assert.Equal(t, "$0.12/hour", EstimateCost("ml.m5.large"))
	assert.Equal(t, "$0.48/hour", EstimateCost("ml.m5.2xlarge"))
	assert.Equal(t, "$3.06/hour", EstimateCost("ml.p3.2xlarge"))
	assert.Equal(t, "$0.00/hour", EstimateCost("ml.c5.4xlarge"))
	assert.Equal(t, "$0.00/hour", EstimateCost(""))
}
