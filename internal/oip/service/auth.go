package service

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cognitoidp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/ollamacloud/oip/pkg/apierror"
	"github.com/ollamacloud/oip/pkg/awsapi"
	"github.com/rs/zerolog"
)

// defaultUserGroup is the Cognito group new accounts join.
const defaultUserGroup = "Users"

// AuthService implements the account surface on top of Cognito admin
// flows. Cognito owns credentials; the user store only mirrors
// bookkeeping fields.
type AuthService struct {
	cfg           *config.Config
	cognitoClient awsapi.CognitoAPI
	users         repository.UserRepository
}

// NewAuthService creates a new Auth Service.
func NewAuthService(cfg *config.Config, cognitoClient awsapi.CognitoAPI, users repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:           cfg,
		cognitoClient: cognitoClient,
		users:         users,
	}
}

// Login authenticates email and password against the user pool and
// returns the issued tokens.
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	logger := zerolog.Ctx(ctx)

	out, err := s.cognitoClient.AdminInitiateAuth(ctx, &cognitoidp.AdminInitiateAuthInput{
		UserPoolId: aws.String(s.cfg.UserPoolID),
		ClientId:   aws.String(s.cfg.ClientID),
		AuthFlow:   cognitotypes.AuthFlowTypeAdminUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": req.Email,
			"PASSWORD": req.Password,
		},
	})
	if err != nil {
		return nil, mapLoginError(err)
	}
	if out.AuthenticationResult == nil {
		// A challenge response instead of tokens; this service does
		// not drive challenge flows.
		return nil, apierror.ErrUnauthorized
	}

	s.recordLogin(ctx, req.Email)

	logger.Info().Str("email", req.Email).Msg("User logged in")
	return &entity.LoginResponse{
		AccessToken:  aws.ToString(out.AuthenticationResult.AccessToken),
		IDToken:      aws.ToString(out.AuthenticationResult.IdToken),
		RefreshToken: aws.ToString(out.AuthenticationResult.RefreshToken),
		ExpiresIn:    out.AuthenticationResult.ExpiresIn,
		TokenType:    "Bearer",
	}, nil
}

// Register creates a Cognito account with a permanent password, puts
// it in the default group, and mirrors it into the user store.
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
	logger := zerolog.Ctx(ctx)

	attrs := []cognitotypes.AttributeType{
		{Name: aws.String("email"), Value: aws.String(req.Email)},
		{Name: aws.String("email_verified"), Value: aws.String("true")},
	}
	if req.Name != "" {
		attrs = append(attrs, cognitotypes.AttributeType{
			Name:  aws.String("name"),
			Value: aws.String(req.Name),
		})
	}

	_, err := s.cognitoClient.AdminCreateUser(ctx, &cognitoidp.AdminCreateUserInput{
		UserPoolId:        aws.String(s.cfg.UserPoolID),
		Username:          aws.String(req.Email),
		UserAttributes:    attrs,
		TemporaryPassword: aws.String(req.Password),
		MessageAction:     cognitotypes.MessageActionTypeSuppress,
	})
	if err != nil {
		var exists *cognitotypes.UsernameExistsException
		if errors.As(err, &exists) {
			return nil, apierror.ErrUserExists
		}
		var badPassword *cognitotypes.InvalidPasswordException
		if errors.As(err, &badPassword) {
			return nil, apierror.WrapError(apierror.ErrBadRequest, "Invalid password format", err)
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "User creation failed", err)
	}

	if _, err := s.cognitoClient.AdminSetUserPassword(ctx, &cognitoidp.AdminSetUserPasswordInput{
		UserPoolId: aws.String(s.cfg.UserPoolID),
		Username:   aws.String(req.Email),
		Password:   aws.String(req.Password),
		Permanent:  true,
	}); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "User creation failed", err)
	}

	if _, err := s.cognitoClient.AdminAddUserToGroup(ctx, &cognitoidp.AdminAddUserToGroupInput{
		UserPoolId: aws.String(s.cfg.UserPoolID),
		Username:   aws.String(req.Email),
		GroupName:  aws.String(defaultUserGroup),
	}); err != nil {
		logger.Warn().Err(err).Str("email", req.Email).Msg("Failed to add user to group")
	}

	userID := s.mirrorUser(ctx, req.Email, req.Name)

	logger.Info().Str("email", req.Email).Msg("User created")
	return &entity.RegisterResponse{
		UserID:  userID,
		Email:   req.Email,
		Message: "User created successfully",
	}, nil
}

// ForgotPassword triggers Cognito's reset mail for the account.
func (s *AuthService) ForgotPassword(ctx context.Context, req *entity.ForgotPasswordRequest) (*entity.ForgotPasswordResponse, error) {
	_, err := s.cognitoClient.AdminResetUserPassword(ctx, &cognitoidp.AdminResetUserPasswordInput{
		UserPoolId: aws.String(s.cfg.UserPoolID),
		Username:   aws.String(req.Email),
	})
	if err != nil {
		var notFound *cognitotypes.UserNotFoundException
		if errors.As(err, &notFound) {
			return nil, apierror.ErrUserNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Password reset failed", err)
	}

	return &entity.ForgotPasswordResponse{
		Message: "Password reset email sent successfully",
	}, nil
}

// mirrorUser writes the bookkeeping record for a new account. The
// record is advisory; failures are logged, not returned.
func (s *AuthService) mirrorUser(ctx context.Context, email, name string) string {
	logger := zerolog.Ctx(ctx)

	sub, err := s.lookupSub(ctx, email)
	if err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Failed to look up new user")
		return ""
	}

	now := time.Now().UTC()
	if err := s.users.Put(ctx, &model.User{
		UserID:      sub,
		Email:       email,
		Name:        name,
		CreatedAt:   now,
		LastLoginAt: &now,
	}); err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Failed to create user record")
	}
	return sub
}

// recordLogin updates the last-login timestamp, best effort.
func (s *AuthService) recordLogin(ctx context.Context, email string) {
	logger := zerolog.Ctx(ctx)

	sub, err := s.lookupSub(ctx, email)
	if err != nil {
		logger.Warn().Err(err).Str("email", email).Msg("Failed to look up user for login record")
		return
	}
	if err := s.users.UpdateLastLogin(ctx, sub, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Str("email", email).Msg("Failed to update last login")
	}
}

// lookupSub resolves an email to the Cognito sub used as user ID.
func (s *AuthService) lookupSub(ctx context.Context, email string) (string, error) {
	out, err := s.cognitoClient.AdminGetUser(ctx, &cognitoidp.AdminGetUserInput{
		UserPoolId: aws.String(s.cfg.UserPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return "", err
	}
	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "sub" {
			return aws.ToString(attr.Value), nil
		}
	}
	return "", errors.New("user has no sub attribute")
}

// mapLoginError translates Cognito auth failures into API errors.
func mapLoginError(err error) error {
	var notAuthorized *cognitotypes.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return apierror.ErrUnauthorized
	}
	var notConfirmed *cognitotypes.UserNotConfirmedException
	if errors.As(err, &notConfirmed) {
		return apierror.WrapError(apierror.ErrUnauthorized, "User account not confirmed", err)
	}
	var resetRequired *cognitotypes.PasswordResetRequiredException
	if errors.As(err, &resetRequired) {
		return apierror.WrapError(apierror.ErrUnauthorized, "Password reset required", err)
	}
	var userNotFound *cognitotypes.UserNotFoundException
	if errors.As(err, &userNotFound) {
		return apierror.ErrUnauthorized
	}
	return apierror.WrapError(apierror.ErrInternalError, "Authentication failed", err)
}
