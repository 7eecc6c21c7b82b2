package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

const (
	DefaultLimit = 200
	MaxLimit     = 1000
)

// ParseLimit reads the limit query parameter. Missing or unparsable values give DefaultLimit.
func ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}
	return clampLimit(n)
}

func clampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// EscapeLiteral makes value safe inside a single-quoted SQL literal.
func EscapeLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// BuildQuery renders the chat query for table. The engine has no bound parameters,
// so every caller value goes through EscapeLiteral.
func BuildQuery(table string, f Filter) string {
	var predicates []string
	if f.Date != "" {
		predicates = append(predicates, fmt.Sprintf(`"date" = '%s'`, EscapeLiteral(f.Date)))
	}
	if f.Sender != "" {
		predicates = append(predicates, fmt.Sprintf(`LOWER(sender) LIKE '%%%s%%'`, EscapeLiteral(strings.ToLower(f.Sender))))
	}
	if f.Search != "" {
		predicates = append(predicates, fmt.Sprintf(`LOWER(text) LIKE '%%%s%%'`, EscapeLiteral(strings.ToLower(f.Search))))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT message_id, "date", "time", sender, text, word_count FROM "`)
	sb.WriteString(strings.ReplaceAll(table, `"`, `""`))
	sb.WriteString(`"`)
	if len(predicates) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(predicates, " AND "))
	}
	sb.WriteString(` ORDER BY "date" DESC, "time" ASC`)
	limit := f.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	sb.WriteString(fmt.Sprintf(" LIMIT %d", clampLimit(limit)))
	return sb.String()
}

// Engine runs SQL and returns rows keyed by column label.
type Engine interface {
	Run(ctx context.Context, sql string) ([]map[string]string, error)
}

// QueryService answers chat queries against the silver table.
type QueryService struct {
	engine Engine
	table  string
	cache  *expirable.LRU[string, []Row]
	log    zerolog.Logger
}

// NewQueryService builds the service. A zero cacheTTL disables result caching.
func NewQueryService(engine Engine, table string, cacheSize int, cacheTTL time.Duration, log zerolog.Logger) *QueryService {
	svc := &QueryService{
		engine: engine,
		table:  table,
		log:    log.With().Str("component", "chat-query").Logger(),
	}
	if cacheTTL > 0 && cacheSize > 0 {
		svc.cache = expirable.NewLRU[string, []Row](cacheSize, nil, cacheTTL)
	}
	return svc
}

// Query runs the filtered chat query.
func (s *QueryService) Query(ctx context.Context, f Filter) ([]Row, error) {
	sql := BuildQuery(s.table, f)
	if s.cache != nil {
		if rows, ok := s.cache.Get(sql); ok {
			s.log.Debug().Int("rows", len(rows)).Msg("chat query served from cache")
			return rows, nil
		}
	}

	records, err := s.engine.Run(ctx, sql)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rowFromRecord(rec))
	}
	if s.cache != nil {
		s.cache.Add(sql, rows)
	}
	return rows, nil
}

func rowFromRecord(rec map[string]string) Row {
	// A malformed count defaults to zero rather than failing the whole result.
	count, _ := strconv.Atoi(rec["word_count"])
	return Row{
		MessageID: rec["message_id"],
		Date:      rec["date"],
		Time:      rec["time"],
		Sender:    rec["sender"],
		Text:      rec["text"],
		WordCount: count,
	}
}
