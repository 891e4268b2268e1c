package apierror

import "net/http"

// Predefined errors for the platform's error taxonomy. Handlers and
// services wrap these with WrapError to attach context while keeping
// the code and HTTP status stable for errors.Is checks.
var (
	// ErrBadRequest a required field is missing or a body is malformed.
	ErrBadRequest = &Error{
		Code:       "BadRequest",
		Message:    "The request is missing a required field or is malformed.",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrUnauthorized the caller's credentials were rejected by the identity provider.
	ErrUnauthorized = &Error{
		Code:       "Unauthorized",
		Message:    "Invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrForbidden the caller is neither the owner of the resource nor an administrator.
	ErrForbidden = &Error{
		Code:       "Forbidden",
		Message:    "Access denied",
		HTTPStatus: http.StatusForbidden,
	}

	// ErrModelNotFound the requested model does not exist in the catalog.
	ErrModelNotFound = &Error{
		Code:       "ModelNotFound",
		Message:    "Model not found",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrInstanceNotFound the requested instance does not exist.
	ErrInstanceNotFound = &Error{
		Code:       "InstanceNotFound",
		Message:    "Instance not found",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrUserNotFound the user does not exist in the user pool.
	ErrUserNotFound = &Error{
		Code:       "UserNotFound",
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrUserExists a user with the same email already exists.
	ErrUserExists = &Error{
		Code:       "UserExists",
		Message:    "User already exists",
		HTTPStatus: http.StatusConflict,
	}

	// ErrInstanceLimitExceeded the caller reached the configured maximum
	// number of active instances.
	ErrInstanceLimitExceeded = &Error{
		Code:       "InstanceLimitExceeded",
		Message:    "Instance limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}

	// ErrInternalError an unexpected failure, including any external
	// service error not otherwise classified.
	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)
