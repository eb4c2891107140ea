package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/backlog-studio/engine/pkg/errors"
)

func TestParsePageRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/work-items?page=2&page_size=50", nil)
	req, err := parsePageRequest(r)
	require.NoError(t, err)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 50, req.PageSize)

	// camelCase alias accepted
	r = httptest.NewRequest("GET", "/work-items?pageSize=5", nil)
	req, err = parsePageRequest(r)
	require.NoError(t, err)
	assert.Equal(t, 0, req.Page)
	assert.Equal(t, 5, req.PageSize)

	// omitted parameters defer to service defaults
	r = httptest.NewRequest("GET", "/work-items", nil)
	req, err = parsePageRequest(r)
	require.NoError(t, err)
	assert.Zero(t, req.Page)
	assert.Zero(t, req.PageSize)
}

func TestParsePageRequestRejectsBadInput(t *testing.T) {
	for _, q := range []string{"page=abc", "page=-1", "page_size=ten", "page_size=-5"} {
		r := httptest.NewRequest("GET", "/work-items?"+q, nil)
		_, err := parsePageRequest(r)
		assert.True(t, appErr.IsCode(err, appErr.CodeInvalid), q)
	}
}
