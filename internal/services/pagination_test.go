package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestClamping(t *testing.T) {
	cases := []struct {
		name           string
		in             PageRequest
		page, size     int
		offset, limit  int
	}{
		{"defaults", PageRequest{}, 1, 20, 0, 20},
		{"explicit", PageRequest{Page: 3, PageSize: 10}, 3, 10, 20, 10},
		{"zero page clamps to one", PageRequest{Page: 0, PageSize: 10}, 1, 10, 0, 10},
		{"zero size reads as unset", PageRequest{Page: 2, PageSize: 0}, 2, 20, 20, 20},
		{"oversized page size clamps to max", PageRequest{Page: 1, PageSize: 500}, 1, MaxPageSize, 0, MaxPageSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, size := tc.in.normalized()
			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.size, size)
			offset, limit := tc.in.offsetLimit()
			assert.Equal(t, tc.offset, offset)
			assert.Equal(t, tc.limit, limit)
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := newPageInfo(PageRequest{Page: 2, PageSize: 20}, 41)
	assert.Equal(t, PageInfo{CurrentPage: 2, PageSize: 20, TotalItems: 41, TotalPages: 3}, info)

	info = newPageInfo(PageRequest{}, 0)
	assert.Equal(t, PageInfo{CurrentPage: 1, PageSize: 20, TotalItems: 0, TotalPages: 0}, info)
}
