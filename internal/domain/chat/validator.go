package chat

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/domain/objectstore"
	"jan-server/services/lifelog-api/internal/infrastructure/metrics"
	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

// RejectedExportCode identifies rejected chat uploads in logs.
const RejectedExportCode = "4f7a2c19-8e3b-4d6a-b5c1-2e9f0a7d3b64"

// BronzeKey returns the partitioned bronze key for filename, using the UTC year and month of ts.
func BronzeKey(bronzePrefix, filename string, ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("%syear=%d/month=%02d/%s", bronzePrefix, ts.Year(), int(ts.Month()), filename)
}

// Validator decides whether an uploaded text file is a chat export and files accepted ones into the bronze layer.
type Validator struct {
	store        objectstore.Store
	bronzePrefix string
	maxBytes     int64
	log          zerolog.Logger
	now          func() time.Time
}

func NewValidator(store objectstore.Store, bronzePrefix string, maxBytes int64, log zerolog.Logger) *Validator {
	return &Validator{
		store:        store,
		bronzePrefix: bronzePrefix,
		maxBytes:     maxBytes,
		log:          log.With().Str("component", "chat-validator").Logger(),
		now:          time.Now,
	}
}

// Validate inspects the object at key. A rejection is a normal outcome and returns a nil error;
// only storage failures are returned as errors.
func (v *Validator) Validate(ctx context.Context, key string) (Decision, error) {
	decision := Decision{SourceKey: key}

	if !strings.EqualFold(path.Ext(key), ".txt") {
		return v.reject(ctx, decision, "not a .txt file"), nil
	}
	if strings.HasPrefix(key, v.bronzePrefix) {
		return v.reject(ctx, decision, "already in the bronze layer"), nil
	}

	data, info, err := objectstore.ReadAll(ctx, v.store, key, v.maxBytes)
	if err != nil {
		return decision, fmt.Errorf("read %s: %w", key, err)
	}
	if !LooksLikeExport(string(data)) {
		return v.reject(ctx, decision, "no chat timestamp lines found"), nil
	}

	modified := info.LastModified
	if modified.IsZero() {
		modified = v.now()
	}
	dest := BronzeKey(v.bronzePrefix, path.Base(key), modified)
	if err := v.store.Copy(ctx, key, dest); err != nil {
		return decision, fmt.Errorf("copy %s to %s: %w", key, dest, err)
	}

	decision.Accepted = true
	decision.BronzeKey = dest
	metrics.RecordValidation(ctx, "accepted")
	v.log.Info().
		Str("key", key).
		Str("bronze_key", dest).
		Msg("chat export accepted")
	return decision, nil
}

// reject logs the rejection as REJECTED_INPUT. Rejections are terminal and never returned as errors.
func (v *Validator) reject(ctx context.Context, decision Decision, reason string) Decision {
	decision.Reason = reason
	metrics.RecordValidation(ctx, "rejected")
	platformerrors.LogError(v.log, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeRejected, "skipped: not a chat export", nil, RejectedExportCode,
		map[string]any{"key": decision.SourceKey, "reason": reason}))
	return decision
}
