package awsapi

import (
	"context"

	cognitoidp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// CognitoAPI is the subset of the Cognito Identity Provider client
// used by the account-management surface. All calls are admin flows;
// no token validation happens in this service.
type CognitoAPI interface {
	AdminInitiateAuth(ctx context.Context, params *cognitoidp.AdminInitiateAuthInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminInitiateAuthOutput, error)
	AdminCreateUser(ctx context.Context, params *cognitoidp.AdminCreateUserInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminCreateUserOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cognitoidp.AdminSetUserPasswordInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminSetUserPasswordOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cognitoidp.AdminAddUserToGroupInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminAddUserToGroupOutput, error)
	AdminGetUser(ctx context.Context, params *cognitoidp.AdminGetUserInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminGetUserOutput, error)
	AdminResetUserPassword(ctx context.Context, params *cognitoidp.AdminResetUserPasswordInput, optFns ...func(*cognitoidp.Options)) (*cognitoidp.AdminResetUserPasswordOutput, error)
}

var _ CognitoAPI = (*cognitoidp.Client)(nil)
