package silver

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/lifelog-api/internal/domain/chat"
)

// decodePartition reads a partition file back, restoring the partition date on every message.
func decodePartition(t *testing.T, data []byte, date string) []chat.Message {
	t.Helper()
	rows, err := parquet.Read[MessageRow](bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	messages := make([]chat.Message, len(rows))
	for i, r := range rows {
		messages[i] = chat.Message{
			MessageID:  r.MessageID,
			Date:       date,
			Time:       r.Time,
			Sender:     r.Sender,
			Text:       r.Text,
			SourceFile: r.SourceFile,
			WordCount:  int(r.WordCount),
		}
	}
	return messages
}

func TestEncodeDecodePartition(t *testing.T) {
	content := "12/31/23, 9:15 PM - Alice: Happy new year!\n" +
		"garbage\n" +
		"12/31/23, 9:16 PM - Bob: Same to you\n"
	messages := chat.ParseFile("bronze/whatsapp/year=2024/month=01/chat.txt", content)
	require.Len(t, messages, 2)

	data, err := NewEncoder().Encode(messages)
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(data[:4]))

	decoded := decodePartition(t, data, "2023-12-31")
	assert.Equal(t, messages, decoded)
}

func TestEncodeIsDeterministic(t *testing.T) {
	messages := chat.ParseFile("a.txt", "1/1/24, 10:00 - Alice: one two\n1/1/24, 10:05 - Bob: three\n")

	first, err := NewEncoder().Encode(messages)
	require.NoError(t, err)
	second, err := NewEncoder().Encode(messages)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
