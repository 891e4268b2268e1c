// Package oip assembles the Ollama inference platform server: AWS
// clients, the instance store, the services, and the HTTP API.
package oip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cognitoidp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/jimmicro/grace"
	"github.com/ollamacloud/oip/internal/oip/api"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/internal/oip/service"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg *config.Config
	api *api.API

	// store is non-nil only on the sqlite backend; it owns the
	// database handle.
	store *repository.Repository
}

func New(cfg *config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	ecsClient := ecs.NewFromConfig(awsCfg)
	elbClient := elbv2.NewFromConfig(awsCfg)
	logsClient := cloudwatchlogs.NewFromConfig(awsCfg)
	cognitoClient := cognitoidp.NewFromConfig(awsCfg)

	server := &Server{cfg: cfg}

	var instances repository.InstanceRepository
	var models repository.ModelRepository
	var users repository.UserRepository

	switch cfg.StoreBackend {
	case config.StoreDynamoDB:
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		instances = repository.NewDynamoInstanceRepository(dynamoClient, cfg.InstancesTable)
		models = repository.NewDynamoModelRepository(dynamoClient, cfg.ModelsTable)
		users = repository.NewDynamoUserRepository(dynamoClient, cfg.UsersTable)
		logger.Info().
			Str("instances_table", cfg.InstancesTable).
			Str("models_table", cfg.ModelsTable).
			Msg("Using DynamoDB store")
	case config.StoreSQLite:
		store, err := repository.New(filepath.Join(cfg.DataDir, "oip.db"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		server.store = store
		instances = repository.NewInstanceRepository(store.DB())
		models = repository.NewModelRepository(store.DB())
		users = repository.NewUserRepository(store.DB())
		logger.Info().
			Str("data_dir", cfg.DataDir).
			Msg("Using sqlite store")
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	reconciler := service.NewStatusReconciler(ecsClient, cfg.ClusterName, instances)
	instanceService := service.NewInstanceService(cfg, ecsClient, instances, models, reconciler)
	modelService := service.NewModelService(cfg, ecsClient, elbClient, instances, models)
	logService := service.NewLogService(cfg, logsClient, instances)
	authService := service.NewAuthService(cfg, cognitoClient, users)

	apiInstance, err := api.New(cfg, instanceService, modelService, logService, authService)
	if err != nil {
		return nil, err
	}
	server.api = apiInstance

	return server, nil
}

func (s *Server) Run(ctx context.Context) error {
	services := []grace.Grace{
		s.api,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return err
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Name implements the grace.Grace interface.
func (s *Server) Name() string {
	return "OIP Server"
}

// zerologLogger implements the grace.Logger interface.
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
