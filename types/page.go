/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// Paging bounds. Requests outside these are clamped, never rejected.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 200
)

// QueryFilter is a WHERE fragment with its bind arguments.
type QueryFilter struct {
	Expr string
	Args []interface{}
}

func NewQueryFilter(expr string, args ...interface{}) *QueryFilter {
	return &QueryFilter{Expr: expr, Args: args}
}

// PageRequest describes one page of a listing: a 1-based page number, the
// page size, an optional filter and ORDER BY expressions ("created_at DESC").
// Accessors clamp out-of-range values instead of failing.
type PageRequest struct {
	page     int
	pageSize int
	filter   *QueryFilter
	orders   []string
}

func NewPageRequest(page, pageSize int, filter *QueryFilter, orders ...string) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, filter: filter, orders: orders}
}

func NewDefaultPageRequest(page, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil)
}

func (p *PageRequest) Page() int {
	if p.page < DefaultPage {
		return DefaultPage
	}
	return p.page
}

func (p *PageRequest) PageSize() int {
	if p.pageSize < 1 {
		return DefaultPageSize
	}
	if p.pageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.pageSize
}

func (p *PageRequest) Offset() int {
	return (p.Page() - 1) * p.PageSize()
}

func (p *PageRequest) Filter() *QueryFilter { return p.filter }

func (p *PageRequest) Orders() []string { return p.orders }

// Pagination is one page of items plus the total row count of the query.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

// NewPagination returns an empty page, Total and Items are filled by the
// repository.
func NewPagination[T any](page, pageSize int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: pageSize, Items: make([]*T, 0)}
}

// Pages is the page count needed to cover Total items.
func (p *Pagination[T]) Pages() int {
	if p.PageSize < 1 || p.Total < 1 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
