package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/lifelog-api/internal/domain/objectstore/objectstoretest"
)

const bronzePrefix = "bronze/whatsapp/"

func TestLooksLikeExportThreshold(t *testing.T) {
	one := "Messages are end-to-end encrypted.\n" +
		"12/31/23, 9:15 PM - Alice: hi\n" +
		"just some prose\n"
	two := one + "12/31/23, 9:16 PM - Bob: hello\n"

	assert.False(t, LooksLikeExport(one), "one matching line must be rejected")
	assert.True(t, LooksLikeExport(two), "two matching lines must be accepted")
}

func TestLooksLikeExportOnlyInspectsFirstTwentyNonEmptyLines(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("12/31/23, 9:15 PM - Alice: hi\n")
	for i := 0; i < 19; i++ {
		sb.WriteString("prose line\n\n")
	}
	sb.WriteString("12/31/23, 9:16 PM - Bob: too late\n")
	assert.False(t, LooksLikeExport(sb.String()))

	// Blank lines do not use up the window.
	content := "\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n" +
		"[25/12/2023, 14:05:00] Carol: one\n" +
		"25/12/2023, 14:06 - Carol: two\n"
	assert.True(t, LooksLikeExport(content))
}

func TestLooksLikeExportHandlesByteOrderMark(t *testing.T) {
	content := "\uFEFF[12/31/23, 9:15:02 PM] Alice: hi\n[12/31/23, 9:16:00 PM] Bob: hey\n"
	assert.True(t, LooksLikeExport(content))
}

func TestBronzeKey(t *testing.T) {
	ts := time.Date(2024, 3, 15, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "bronze/whatsapp/year=2024/month=03/chat.txt", BronzeKey(bronzePrefix, "chat.txt", ts.Add(-2*time.Hour)))
	// 21:00 at UTC-5 on March 31st is already April in UTC.
	end := time.Date(2024, 3, 31, 21, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "bronze/whatsapp/year=2024/month=04/chat.txt", BronzeKey(bronzePrefix, "chat.txt", end))
}

func TestValidatorAcceptsAndCopies(t *testing.T) {
	store := objectstoretest.NewMemory()
	store.Seed("uploads/chat_export.txt", "12/31/23, 9:15 PM - Alice: hi\n12/31/23, 9:16 PM - Bob: hello\n")
	v := NewValidator(store, bronzePrefix, 1<<20, zerolog.Nop())

	decision, err := v.Validate(context.Background(), "uploads/chat_export.txt")
	require.NoError(t, err)
	assert.True(t, decision.Accepted)
	assert.Equal(t, "bronze/whatsapp/year=2024/month=03/chat_export.txt", decision.BronzeKey)
	assert.Equal(t, store.Bytes("uploads/chat_export.txt"), store.Bytes(decision.BronzeKey))
	assert.NotNil(t, store.Bytes("uploads/chat_export.txt"), "original stays in place")

	again, err := v.Validate(context.Background(), "uploads/chat_export.txt")
	require.NoError(t, err)
	assert.Equal(t, decision, again)
	assert.Len(t, store.Copies, 2)
}

func TestValidatorRejectsSilently(t *testing.T) {
	store := objectstoretest.NewMemory()
	store.Seed("uploads/notes.txt", "shopping list\neggs\nmilk\n")
	store.Seed("uploads/photo.jpg", "not text")
	store.Seed(bronzePrefix+"year=2024/month=03/chat.txt", "12/31/23, 9:15 PM - A: x\n12/31/23, 9:15 PM - B: y\n")
	v := NewValidator(store, bronzePrefix, 1<<20, zerolog.Nop())

	for _, key := range []string{"uploads/notes.txt", "uploads/photo.jpg", bronzePrefix + "year=2024/month=03/chat.txt"} {
		decision, err := v.Validate(context.Background(), key)
		require.NoError(t, err, key)
		assert.False(t, decision.Accepted, key)
		assert.NotEmpty(t, decision.Reason, key)
	}
	assert.Empty(t, store.Copies)
	assert.Empty(t, store.Deletes)
}

func TestValidatorLogsRejectionAsRejectedInput(t *testing.T) {
	store := objectstoretest.NewMemory()
	store.Seed("uploads/notes.txt", "shopping list\neggs\n")
	var buf bytes.Buffer
	v := NewValidator(store, bronzePrefix, 1<<20, zerolog.New(&buf))

	_, err := v.Validate(context.Background(), "uploads/notes.txt")
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "REJECTED_INPUT", entry["error_type"])
	assert.Equal(t, RejectedExportCode, entry["error_uuid"])
	assert.Equal(t, "uploads/notes.txt", entry["key"])
	assert.Equal(t, "no chat timestamp lines found", entry["reason"])
}

func TestValidatorPropagatesStorageErrors(t *testing.T) {
	store := objectstoretest.NewMemory()
	store.GetErr = errors.New("connection reset")
	v := NewValidator(store, bronzePrefix, 1<<20, zerolog.Nop())

	_, err := v.Validate(context.Background(), "uploads/chat.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestValidatorUsesNowWithoutLastModified(t *testing.T) {
	store := objectstoretest.NewMemory()
	store.Modified = time.Time{}
	store.Seed("chat.txt", "1/2/24, 10:00 - A: x\n1/2/24, 10:01 - B: y\n")
	v := NewValidator(store, bronzePrefix, 1<<20, zerolog.Nop())
	v.now = func() time.Time { return time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC) }

	decision, err := v.Validate(context.Background(), "chat.txt")
	require.NoError(t, err)
	assert.Equal(t, "bronze/whatsapp/year=2025/month=11/chat.txt", decision.BronzeKey)
}
