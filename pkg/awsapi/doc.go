// Package awsapi defines the narrow interfaces this platform needs from
// the AWS SDK clients, plus mock implementations for tests.
//
// The real aws-sdk-go-v2 clients satisfy these interfaces directly, so
// production wiring passes e.g. ecs.NewFromConfig(cfg) where services
// take an awsapi.ECSAPI. Handlers never hold SDK clients as globals;
// every client is an injected collaborator.
package awsapi
