// Copyright 2025 Gramsetu Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Listings are cut into pages of at most maxPageSize entries
const (
	defaultPageSize = 100
	maxPageSize     = 100

	headerListTotal = "X-Pagination-Count-Total"
	headerPageTotal = "X-Pagination-Page-Total"
)

var ErrInvalidPage = errors.New("invalid pagination parameters")

// Page selects one window of a listing. Number is 1-based. Reversed flips
// the order the core returned the listing in (villages by id, fund log
// newest first) before the window is cut.
type Page struct {
	Size     int
	Number   int
	Reversed bool
}

// pageFromQuery reads the count, page and order query values. Out of range
// sizes and page numbers are pulled back into range; malformed values fail.
func pageFromQuery(query url.Values) (Page, error) {
	page := Page{Size: defaultPageSize, Number: 1}
	if v := query.Get("count"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return Page{}, ErrInvalidPage
		}
		page.Size = min(max(size, 1), maxPageSize)
	}
	if v := query.Get("page"); v != "" {
		number, err := strconv.Atoi(v)
		if err != nil {
			return Page{}, ErrInvalidPage
		}
		page.Number = max(number, 1)
	}
	switch strings.ToLower(query.Get("order")) {
	case "", "asc":
	case "desc":
		page.Reversed = true
	default:
		return Page{}, ErrInvalidPage
	}
	return page, nil
}

// pageCount is the number of pages a listing of total entries spans
func (p Page) pageCount(total int) int {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// pageOf cuts the page out of a listing and reports the listing size in the
// response headers
func pageOf[T any](w http.ResponseWriter, items []T, p Page) []T {
	w.Header().Set(headerListTotal, strconv.Itoa(len(items)))
	w.Header().Set(headerPageTotal, strconv.Itoa(p.pageCount(len(items))))
	if p.Reversed {
		items = slices.Clone(items)
		slices.Reverse(items)
	}
	from := (p.Number - 1) * p.Size
	if from >= len(items) {
		return []T{}
	}
	return items[from:min(from+p.Size, len(items))]
}
