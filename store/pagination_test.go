package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 1, ParsePage("1.5"))
	assert.Equal(t, 7, ParsePage("7"))
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		total      int64
		wantNumber int
		wantPages  int
	}{
		{"empty listing", 1, 0, 1, 1},
		{"empty listing high page", 42, 0, 1, 1},
		{"exact boundary", 2, 20, 2, 2},
		{"partial last page", 3, 21, 3, 3},
		{"beyond last", 99, 25, 3, 3},
		{"below first", 0, 25, 1, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			number, pages := clampPage(tc.page, tc.total)
			assert.Equal(t, tc.wantNumber, number)
			assert.Equal(t, tc.wantPages, pages)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	middle := Page{Number: 2, TotalPages: 3}
	assert.True(t, middle.HasPrev())
	assert.True(t, middle.HasNext())
	assert.Equal(t, 1, middle.PrevNumber())
	assert.Equal(t, 3, middle.NextNumber())

	only := Page{Number: 1, TotalPages: 1}
	assert.False(t, only.HasPrev())
	assert.False(t, only.HasNext())
}
