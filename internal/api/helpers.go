package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dirgate/internal/domain"
)

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pageFromQuery reads max_results and page_token query parameters.
func pageFromQuery(r *http.Request) domain.PageRequest {
	page := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if v := r.URL.Query().Get("max_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.MaxResults = n
		}
	}
	return page
}

// listResponse is the JSON envelope for paginated collections.
type listResponse[T any] struct {
	Items         []T    `json:"items"`
	Total         int64  `json:"total"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

func newListResponse[T any](items []T, total int64, page domain.PageRequest) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{
		Items:         items,
		Total:         total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	}
}

// principal returns the authenticated principal, which the auth middleware
// guarantees for protected routes.
func principal(r *http.Request) domain.ContextPrincipal {
	p, _ := domain.PrincipalFromContext(r.Context())
	return p
}
