// Package silver encodes chat partitions as Snappy-compressed Parquet files.
package silver

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"jan-server/services/lifelog-api/internal/domain/chat"
)

const ContentType = "application/vnd.apache.parquet"

// MessageRow is the on-disk layout of one message. The date is carried by the partition path,
// not by the file.
type MessageRow struct {
	MessageID  string `parquet:"message_id"`
	Time       string `parquet:"time"`
	Sender     string `parquet:"sender"`
	Text       string `parquet:"text"`
	WordCount  int32  `parquet:"word_count"`
	SourceFile string `parquet:"source_file"`
}

// Encoder writes partitions with parquet-go.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode writes messages in the given order as one Parquet file.
func (e *Encoder) Encode(messages []chat.Message) ([]byte, error) {
	rows := make([]MessageRow, len(messages))
	for i, m := range messages {
		rows[i] = MessageRow{
			MessageID:  m.MessageID,
			Time:       m.Time,
			Sender:     m.Sender,
			Text:       m.Text,
			WordCount:  int32(m.WordCount),
			SourceFile: m.SourceFile,
		}
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[MessageRow](&buf, parquet.Compression(&parquet.Snappy))
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Encoder) ContentType() string {
	return ContentType
}
