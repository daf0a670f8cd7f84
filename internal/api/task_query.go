package api

import (
	"net/url"
	"strconv"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
)

// Listing defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListTasksQuery holds the query string of GET /tasks after coercion.
type ListTasksQuery struct {
	Page      int    `query:"page"      validate:"min=1"`
	Limit     int    `query:"limit"     validate:"min=1,max=100"`
	Completed string `query:"completed" validate:"omitempty,oneof=true false"`
	Search    string `query:"search"`
	Sort      string `query:"sort"      validate:"oneof=title createdAt priority"`
	Order     string `query:"order"     validate:"oneof=asc desc"`
	Priority  string `query:"priority"  validate:"omitempty,oneof=low medium high"`
}

// parseListTasksQuery coerces and validates query parameters, applying
// defaults for anything absent. The first violation is returned.
func parseListTasksQuery(values url.Values) (ListTasksQuery, error) {
	q := ListTasksQuery{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		Completed: values.Get("completed"),
		Search:    values.Get("search"),
		Sort:      string(store.SortByCreatedAt),
		Order:     "desc",
		Priority:  values.Get("priority"),
	}

	var err error
	if q.Page, err = intParam(values, "page", DefaultPage); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(values, "limit", DefaultLimit); err != nil {
		return q, err
	}
	if v := values.Get("sort"); v != "" {
		q.Sort = v
	}
	if v := values.Get("order"); v != "" {
		q.Order = v
	}

	if err := shared.ValidateRequest(q); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, name+" must be an integer")
	}
	return n, nil
}

// toServiceQuery converts a validated query into the service's form.
func (q ListTasksQuery) toServiceQuery() service.TaskQuery {
	sq := service.TaskQuery{
		Page:       q.Page,
		Limit:      q.Limit,
		Search:     q.Search,
		SortBy:     store.TaskSortField(q.Sort),
		Descending: q.Order == "desc",
	}
	if q.Completed != "" {
		completed := q.Completed == "true"
		sq.Completed = &completed
	}
	if q.Priority != "" {
		p := domain.Priority(q.Priority)
		sq.Priority = &p
	}
	return sq
}
