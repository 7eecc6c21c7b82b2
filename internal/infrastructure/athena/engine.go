// Package athena runs chat queries on Amazon Athena.
package athena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/infrastructure/metrics"
)

// API is the subset of the Athena client used by the engine.
type API interface {
	StartQueryExecution(ctx context.Context, params *awsathena.StartQueryExecutionInput, optFns ...func(*awsathena.Options)) (*awsathena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *awsathena.GetQueryExecutionInput, optFns ...func(*awsathena.Options)) (*awsathena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *awsathena.GetQueryResultsInput, optFns ...func(*awsathena.Options)) (*awsathena.GetQueryResultsOutput, error)
}

// Engine submits SQL, polls until the execution settles and collects every result page.
type Engine struct {
	api          API
	database     string
	workgroup    string
	output       string
	pollInterval time.Duration
	maxPolls     int
	sleep        func(ctx context.Context, d time.Duration) error
	log          zerolog.Logger
}

func NewEngine(cfg *config.Config, api API, log zerolog.Logger) *Engine {
	return &Engine{
		api:          api,
		database:     cfg.AthenaDatabase,
		workgroup:    cfg.AthenaWorkgroup,
		output:       cfg.AthenaOutput,
		pollInterval: cfg.AthenaPollInterval,
		maxPolls:     cfg.AthenaMaxPolls,
		sleep:        sleepContext,
		log:          log.With().Str("component", "athena-engine").Logger(),
	}
}

var _ chat.Engine = (*Engine)(nil)

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run executes sql and returns each row keyed by column label.
func (e *Engine) Run(ctx context.Context, sql string) (rows []map[string]string, err error) {
	start := time.Now()
	ctx, span := otel.Tracer("lifelog-api/athena").Start(ctx, "athena.query")
	defer func() {
		outcome := "succeeded"
		switch {
		case errors.Is(err, chat.ErrQueryTimeout):
			outcome = "timeout"
		case errors.Is(err, chat.ErrQueryFailed):
			outcome = "failed"
		case err != nil:
			outcome = "error"
		}
		metrics.RecordQuery(outcome, time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("athena.rows", len(rows)), attribute.String("athena.outcome", outcome))
		span.End()
	}()

	input := &awsathena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
	}
	if e.database != "" {
		input.QueryExecutionContext = &types.QueryExecutionContext{Database: aws.String(e.database)}
	}
	if e.workgroup != "" {
		input.WorkGroup = aws.String(e.workgroup)
	}
	if e.output != "" {
		input.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(e.output)}
	}

	started, err := e.api.StartQueryExecution(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("start query: %w", err)
	}
	executionID := aws.ToString(started.QueryExecutionId)
	span.SetAttributes(attribute.String("athena.execution_id", executionID))

	if err := e.wait(ctx, executionID); err != nil {
		return nil, err
	}
	return e.collect(ctx, executionID)
}

func (e *Engine) wait(ctx context.Context, executionID string) error {
	for attempt := 0; attempt < e.maxPolls; attempt++ {
		out, err := e.api.GetQueryExecution(ctx, &awsathena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(executionID),
		})
		if err != nil {
			return fmt.Errorf("get query execution %s: %w", executionID, err)
		}

		var state types.QueryExecutionState
		reason := ""
		if out.QueryExecution != nil && out.QueryExecution.Status != nil {
			state = out.QueryExecution.Status.State
			reason = aws.ToString(out.QueryExecution.Status.StateChangeReason)
		}

		switch state {
		case types.QueryExecutionStateSucceeded:
			return nil
		case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
			if reason == "" {
				reason = string(state)
			}
			e.log.Warn().
				Str("execution_id", executionID).
				Str("state", string(state)).
				Str("reason", reason).
				Msg("athena query did not succeed")
			return fmt.Errorf("%w: %s: %s", chat.ErrQueryFailed, state, reason)
		}

		if err := e.sleep(ctx, e.pollInterval); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: execution %s still running after %d polls", chat.ErrQueryTimeout, executionID, e.maxPolls)
}

func (e *Engine) collect(ctx context.Context, executionID string) ([]map[string]string, error) {
	var (
		rows      []map[string]string
		nextToken *string
		firstPage = true
	)
	for {
		out, err := e.api.GetQueryResults(ctx, &awsathena.GetQueryResultsInput{
			QueryExecutionId: aws.String(executionID),
			NextToken:        nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("get query results %s: %w", executionID, err)
		}

		if out.ResultSet != nil {
			var labels []string
			if out.ResultSet.ResultSetMetadata != nil {
				for _, col := range out.ResultSet.ResultSetMetadata.ColumnInfo {
					labels = append(labels, aws.ToString(col.Label))
				}
			}
			pageRows := out.ResultSet.Rows
			if firstPage && len(pageRows) > 0 {
				pageRows = pageRows[1:]
			}
			for _, row := range pageRows {
				record := make(map[string]string, len(labels))
				for i, datum := range row.Data {
					if i >= len(labels) {
						break
					}
					record[labels[i]] = aws.ToString(datum.VarCharValue)
				}
				rows = append(rows, record)
			}
		}
		firstPage = false

		if aws.ToString(out.NextToken) == "" {
			return rows, nil
		}
		nextToken = out.NextToken
	}
}
