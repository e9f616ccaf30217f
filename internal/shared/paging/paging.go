package paging

import (
	"context"

	"gorm.io/gorm"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// Query carries the page window requested by the caller. Embedded by the
// request and balance query DTOs.
type Query struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"pageSize" json:"pageSize"`
}

// Normalized returns the page window with defaults applied.
func (q Query) Normalized() (page, pageSize int) {
	page = q.Page
	pageSize = q.PageSize
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
}

func (p PagedResult[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.PageSize) - 1) / int64(p.PageSize))
}

func (p PagedResult[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}

func (p PagedResult[T]) HasPrevious() bool {
	return p.Page > 1
}

// ToPagedResult counts the filtered set, then fetches one page ordered by
// the caller's query. dest rows are scanned into T.
func ToPagedResult[T any](ctx context.Context, db *gorm.DB, q Query) (PagedResult[T], error) {
	page, pageSize := q.Normalized()

	var total int64
	if err := db.WithContext(ctx).Count(&total).Error; err != nil {
		return PagedResult[T]{}, err
	}

	var items []T
	err := db.WithContext(ctx).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return PagedResult[T]{}, err
	}

	return PagedResult[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	}, nil
}

// PageSlice paginates an already materialized slice.
func PageSlice[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// GroupPage folds a flat row set into one result per distinct key and
// paginates the KEYS rather than the rows, so a key's rows are never
// split across pages. Needed when the response shape nests a collection
// per key (per-user balance entries) and a flat offset/limit would cut
// through the middle of a group.
func GroupPage[TSource any, TKey comparable, TResult any](
	rows []TSource,
	q Query,
	keyOf func(TSource) TKey,
	fold func([]TSource) []TResult,
) PagedResult[TResult] {
	page, pageSize := q.Normalized()

	seen := make(map[TKey]struct{}, len(rows))
	keys := make([]TKey, 0, len(rows))
	for _, row := range rows {
		k := keyOf(row)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	pagedKeys := PageSlice(keys, page, pageSize)
	keep := make(map[TKey]struct{}, len(pagedKeys))
	for _, k := range pagedKeys {
		keep[k] = struct{}{}
	}

	pageRows := make([]TSource, 0, len(rows))
	for _, row := range rows {
		if _, ok := keep[keyOf(row)]; ok {
			pageRows = append(pageRows, row)
		}
	}

	return PagedResult[TResult]{
		Items:      fold(pageRows),
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(len(keys)),
	}
}
