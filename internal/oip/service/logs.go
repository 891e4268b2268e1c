package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/pkg/apierror"
	"github.com/ollamacloud/oip/pkg/awsapi"
	"github.com/ollamacloud/oip/pkg/idgen"
	"github.com/rs/zerolog"
)

const (
	// maxLogStreams limits how many of an instance's newest streams
	// are read.
	maxLogStreams = 5
	// maxLogEvents caps both the per-stream read and the merged
	// response.
	maxLogEvents = 100
)

// LogService retrieves instance container logs from CloudWatch.
type LogService struct {
	cfg        *config.Config
	logsClient awsapi.LogsAPI
	instances  repository.InstanceRepository
}

// NewLogService creates a new Log Service.
func NewLogService(cfg *config.Config, logsClient awsapi.LogsAPI, instances repository.InstanceRepository) *LogService {
	return &LogService{
		cfg:        cfg,
		logsClient: logsClient,
		instances:  instances,
	}
}

// GetInstanceLogs returns the newest log events of an instance,
// merged across its most recent streams, newest first. An instance
// that has not logged yet returns an empty event list, not an error.
func (s *LogService) GetInstanceLogs(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceLogsResponse, error) {
	logger := zerolog.Ctx(ctx)

	record, err := s.instances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.ErrInstanceNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load instance", err)
	}
	if record.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apierror.ErrForbidden
	}

	logGroup := fmt.Sprintf("/ecs/%s-ollama", s.cfg.Environment)
	streamPrefix := "ollama-" + idgen.ShortID(id)

	streams, err := s.logsClient.DescribeLogStreams(ctx, &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName:        aws.String(logGroup),
		LogStreamNamePrefix: aws.String(streamPrefix),
		OrderBy:             cwtypes.OrderByLastEventTime,
		Descending:          aws.Bool(true),
		Limit:               aws.Int32(maxLogStreams),
	})
	if err != nil {
		var notFound *cwtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			// Log group not created yet; the container has not
			// written anything.
			return &entity.GetInstanceLogsResponse{
				InstanceID: id,
				LogGroup:   logGroup,
				Events:     []entity.LogEvent{},
				Message:    "No logs available yet",
			}, nil
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to retrieve logs", err)
	}

	var events []entity.LogEvent
	for _, stream := range streams.LogStreams {
		streamName := aws.ToString(stream.LogStreamName)
		out, err := s.logsClient.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
			LogGroupName:  aws.String(logGroup),
			LogStreamName: aws.String(streamName),
			Limit:         aws.Int32(maxLogEvents),
			StartFromHead: aws.Bool(false),
		})
		if err != nil {
			logger.Warn().Err(err).Str("log_stream", streamName).Msg("Could not read log stream")
			continue
		}
		for _, event := range out.Events {
			events = append(events, entity.LogEvent{
				Timestamp: time.UnixMilli(aws.ToInt64(event.Timestamp)).UTC(),
				Message:   aws.ToString(event.Message),
				Stream:    streamName,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
	if len(events) > maxLogEvents {
		events = events[:maxLogEvents]
	}
	resp := &entity.GetInstanceLogsResponse{
		InstanceID: id,
		LogGroup:   logGroup,
		Events:     events,
	}
	if len(events) == 0 {
		resp.Events = []entity.LogEvent{}
		resp.Message = "No logs available yet"
	}
	return resp, nil
}
