package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cognitoidp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/stretchr/testify/mock"
)

// MockECS is a testify mock for ECSAPI.
type MockECS struct {
	mock.Mock
}

var _ ECSAPI = (*MockECS)(nil)

func (m *MockECS) RunTask(ctx context.Context, params *ecs.RunTaskInput, optFns ...func(*ecs.Options)) (*ecs.RunTaskOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.RunTaskOutput)
	return out, args.Error(1)
}

func (m *MockECS) StopTask(ctx context.Context, params *ecs.StopTaskInput, optFns ...func(*ecs.Options)) (*ecs.StopTaskOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.StopTaskOutput)
	return out, args.Error(1)
}

func (m *MockECS) DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.DescribeTasksOutput)
	return out, args.Error(1)
}

func (m *MockECS) RegisterTaskDefinition(ctx context.Context, params *ecs.RegisterTaskDefinitionInput, optFns ...func(*ecs.Options)) (*ecs.RegisterTaskDefinitionOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.RegisterTaskDefinitionOutput)
	return out, args.Error(1)
}

func (m *MockECS) CreateService(ctx context.Context, params *ecs.CreateServiceInput, optFns ...func(*ecs.Options)) (*ecs.CreateServiceOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.CreateServiceOutput)
	return out, args.Error(1)
}

func (m *MockECS) UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.UpdateServiceOutput)
	return out, args.Error(1)
}

func (m *MockECS) DeleteService(ctx context.Context, params *ecs.DeleteServiceInput, optFns ...func(*ecs.Options)) (*ecs.DeleteServiceOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.DeleteServiceOutput)
	return out, args.Error(1)
}

func (m *MockECS) DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ecs.DescribeServicesOutput)
	return out, args.Error(1)
}

// MockELB is a testify mock for ELBAPI.
type MockELB struct {
	mock.Mock
}

var _ ELBAPI = (*MockELB)(nil)

func (m *MockELB) CreateTargetGroup(ctx context.Context, params *elbv2.CreateTargetGroupInput, optFns ...func(*elbv2.Options)) (*elbv2.CreateTargetGroupOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*elbv2.CreateTargetGroupOutput)
	return out, args.Error(1)
}

func (m *MockELB) DeleteTargetGroup(ctx context.Context, params *elbv2.DeleteTargetGroupInput, optFns ...func(*elbv2.Options)) (*elbv2.DeleteTargetGroupOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*elbv2.DeleteTargetGroupOutput)
	return out, args.Error(1)
}

// MockLogs is a testify mock for LogsAPI.
type MockLogs struct {
	mock.Mock
}

var _ LogsAPI = (*MockLogs)(nil)

func (m *MockLogs) DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cloudwatchlogs.DescribeLogStreamsOutput)
	return out, args.Error(1)
}

func (m *MockLogs) GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cloudwatchlogs.GetLogEventsOutput)
	return out, args.Error(1)
}

// MockCognito is a testify mock for CognitoAPI.
type MockCognito struct {
	mock.Mock
}

var _ CognitoAPI = (*MockCognito)(nil)

func (m *MockCognito) AdminInitiateAuth(ctx context.Context, params *cognitoidp.AdminInitiateAuthInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminInitiateAuthOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cognitoidp.AdminInitiateAuthOutput)
	return out, args.Error(1)
}

func (m *MockCognito) AdminCreateUser(ctx context.Context, params *cognitoidp.AdminCreateUserInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminCreateUserOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cognitoidp.AdminCreateUserOutput)
	return out, args.Error(1)
}

func (m *MockCognito) AdminSetUserPassword(ctx context.Context, params *cognitoidp.AdminSetUserPasswordInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminSetUserPasswordOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cognitoidp.AdminSetUserPasswordOutput)
	return out, args.Error(1)
}

func (m *MockCognito) AdminAddUserToGroup(ctx context.Context, params *cognitoidp.AdminAddUserToGroupInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminAddUserToGroupOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cognitoidp.AdminAddUserToGroupOutput)
	return out, args.Error(1)
}

func (m *MockCognito) AdminGetUser(ctx context.Context, params *cognitoidp.AdminGetUserInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminGetUserOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cognitoidp.AdminGetUserOutput)
	return out, args.Error(1)
}

func (m *MockCognito) AdminResetUserPassword(ctx context.Context, params *cognitoidp.AdminResetUserPasswordInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminResetUserPasswordOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cognitoidp.AdminResetUserPasswordOutput)
	return out, args.Error(1)
}
