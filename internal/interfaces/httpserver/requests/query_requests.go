package requests

import (
	"strings"

	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/domain/photo"
)

// ListPhotosRequest holds the photo listing query parameters.
type ListPhotosRequest struct {
	SortBy string `form:"sort_by" binding:"omitempty,oneof=uploaded_at taken_at"`
	Tag    string `form:"tag"`
}

// ToDomain converts request to domain filter
func (r *ListPhotosRequest) ToDomain() photo.Filter {
	return photo.Filter{
		SortBy: r.SortBy,
		Tag:    strings.TrimSpace(r.Tag),
	}
}

// SearchChatsRequest holds the chat search query parameters. Limit stays a string
// so that an unparsable value falls back to the default instead of failing the bind.
type SearchChatsRequest struct {
	Date   string `form:"date"`
	Sender string `form:"sender"`
	Search string `form:"search"`
	Limit  string `form:"limit"`
}

// ToDomain converts request to domain filter
func (r *SearchChatsRequest) ToDomain() chat.Filter {
	return chat.Filter{
		Date:   strings.TrimSpace(r.Date),
		Sender: strings.TrimSpace(r.Sender),
		Search: strings.TrimSpace(r.Search),
		Limit:  chat.ParseLimit(r.Limit),
	}
}
