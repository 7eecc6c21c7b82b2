// Package catalog registers the silver chat table in the Glue Data Catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/domain/chat"
)

const (
	parquetInputFormat  = "org.apache.hadoop.hive.ql.io.parquet.MapredParquetInputFormat"
	parquetOutputFormat = "org.apache.hadoop.hive.ql.io.parquet.MapredParquetOutputFormat"
	parquetSerDe        = "org.apache.hadoop.hive.ql.io.parquet.serde.ParquetHiveSerDe"

	// Glue accepts at most 100 partitions per BatchCreatePartition call.
	partitionBatchSize = 100
)

// GlueAPI is the subset of the Glue client used here.
type GlueAPI interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
	CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error)
	UpdateTable(ctx context.Context, params *glue.UpdateTableInput, optFns ...func(*glue.Options)) (*glue.UpdateTableOutput, error)
	BatchCreatePartition(ctx context.Context, params *glue.BatchCreatePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error)
}

// GlueCatalog keeps the chat table definition and its partitions registered.
type GlueCatalog struct {
	api      GlueAPI
	database string
	table    string
	location string
	log      zerolog.Logger
}

// NewGlueCatalog returns a catalog for table in database. location is the s3:// URI of the silver prefix.
func NewGlueCatalog(api GlueAPI, database, table, location string, log zerolog.Logger) *GlueCatalog {
	return &GlueCatalog{
		api:      api,
		database: database,
		table:    table,
		location: location,
		log:      log.With().Str("component", "glue-catalog").Logger(),
	}
}

var _ chat.Catalog = (*GlueCatalog)(nil)

func (c *GlueCatalog) columns() []types.Column {
	return []types.Column{
		{Name: aws.String("message_id"), Type: aws.String("string"), Comment: aws.String("SHA-256(source_file:line_index), 16 hex chars")},
		{Name: aws.String("time"), Type: aws.String("string"), Comment: aws.String("Raw time string from the export")},
		{Name: aws.String("sender"), Type: aws.String("string"), Comment: aws.String("Message sender display name")},
		{Name: aws.String("text"), Type: aws.String("string"), Comment: aws.String("Message body text")},
		{Name: aws.String("word_count"), Type: aws.String("int"), Comment: aws.String("Whitespace-delimited token count")},
		{Name: aws.String("source_file"), Type: aws.String("string"), Comment: aws.String("Key of the bronze source file")},
	}
}

func (c *GlueCatalog) storage(location string) *types.StorageDescriptor {
	return &types.StorageDescriptor{
		Columns:      c.columns(),
		Location:     aws.String(location),
		InputFormat:  aws.String(parquetInputFormat),
		OutputFormat: aws.String(parquetOutputFormat),
		Compressed:   true,
		SerdeInfo: &types.SerDeInfo{
			SerializationLibrary: aws.String(parquetSerDe),
			Parameters:           map[string]string{"serialization.format": "1"},
		},
	}
}

func (c *GlueCatalog) tableInput() *types.TableInput {
	return &types.TableInput{
		Name:      aws.String(c.table),
		TableType: aws.String("EXTERNAL_TABLE"),
		Parameters: map[string]string{
			"EXTERNAL":         "TRUE",
			"classification":   "parquet",
			"parquet.compress": "SNAPPY",
		},
		PartitionKeys: []types.Column{
			{Name: aws.String("date"), Type: aws.String("string"), Comment: aws.String("ISO-8601 message date, partition key")},
		},
		StorageDescriptor: c.storage(c.location),
	}
}

// EnsureTable creates the table, or rewrites its definition when it already exists.
func (c *GlueCatalog) EnsureTable(ctx context.Context) error {
	_, err := c.api.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(c.database),
		Name:         aws.String(c.table),
	})
	var notFound *types.EntityNotFoundException
	switch {
	case errors.As(err, &notFound):
		if _, err := c.api.CreateTable(ctx, &glue.CreateTableInput{
			DatabaseName: aws.String(c.database),
			TableInput:   c.tableInput(),
		}); err != nil {
			return fmt.Errorf("create table %s.%s: %w", c.database, c.table, err)
		}
		c.log.Info().Str("table", c.table).Msg("catalog table created")
		return nil
	case err != nil:
		return fmt.Errorf("get table %s.%s: %w", c.database, c.table, err)
	}

	if _, err := c.api.UpdateTable(ctx, &glue.UpdateTableInput{
		DatabaseName: aws.String(c.database),
		TableInput:   c.tableInput(),
	}); err != nil {
		return fmt.Errorf("update table %s.%s: %w", c.database, c.table, err)
	}
	return nil
}

// AddPartitions registers date partitions. Partitions that already exist are ignored.
func (c *GlueCatalog) AddPartitions(ctx context.Context, dates []string) error {
	for start := 0; start < len(dates); start += partitionBatchSize {
		end := min(start+partitionBatchSize, len(dates))

		inputs := make([]types.PartitionInput, 0, end-start)
		for _, date := range dates[start:end] {
			inputs = append(inputs, types.PartitionInput{
				Values:            []string{date},
				StorageDescriptor: c.storage(c.partitionLocation(date)),
			})
		}

		out, err := c.api.BatchCreatePartition(ctx, &glue.BatchCreatePartitionInput{
			DatabaseName:       aws.String(c.database),
			TableName:          aws.String(c.table),
			PartitionInputList: inputs,
		})
		if err != nil {
			return fmt.Errorf("create partitions on %s.%s: %w", c.database, c.table, err)
		}
		created := len(inputs)
		for _, perr := range out.Errors {
			if perr.ErrorDetail != nil && aws.ToString(perr.ErrorDetail.ErrorCode) == "AlreadyExistsException" {
				created--
				continue
			}
			msg := "unknown error"
			if perr.ErrorDetail != nil {
				msg = aws.ToString(perr.ErrorDetail.ErrorMessage)
			}
			return fmt.Errorf("create partition %v on %s.%s: %s", perr.PartitionValues, c.database, c.table, msg)
		}
		c.log.Debug().Int("requested", len(inputs)).Int("created", created).Msg("catalog partitions registered")
	}
	return nil
}

func (c *GlueCatalog) partitionLocation(date string) string {
	return c.location + chat.PartitionPrefix("", date)
}
