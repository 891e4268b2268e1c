// Package ginx provides generic gin handler adapters so that handlers
// can be written as plain functions taking a typed request and
// returning a typed response plus an error.
//
// Request binding merges the JSON body with URI and query parameters.
// Errors are rendered with the uniform {error, message?} envelope;
// apierror.Error values choose their own HTTP status. Responses
// implementing StatusCoder choose their success status code.
package ginx
