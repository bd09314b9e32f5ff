package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/story"
)

func TestTab(t *testing.T) {
	assert.Equal(t, "[1] All", Tab(query.All))
	assert.Equal(t, "[2] Recently", Tab(query.Recent))
	assert.Equal(t, "[3] Trash", Tab(query.Trash))
}

func TestCategoryForKey(t *testing.T) {
	c, ok := CategoryForKey("3")
	require.True(t, ok)
	assert.Equal(t, query.Trash, c)

	_, ok = CategoryForKey("9")
	assert.False(t, ok)
}

func TestCountLabel(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	records := []story.Story{
		story.New("the ship", now),
		story.New("a boat", now),
	}
	engine := query.NewEngine(query.WithClock(func() time.Time { return now }))

	tests := []struct {
		name string
		term string
		want string
	}{
		{name: "no search", term: "", want: "2 Items"},
		{name: "search", term: "ship", want: "1 of 2 Items"},
		{name: "no hits", term: "plane", want: "0 of 2 Items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.Query(records, query.All, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, CountLabel(res))
		})
	}

	res, err := engine.Query(records[:1], query.All, "")
	require.NoError(t, err)
	assert.Equal(t, "1 Item", CountLabel(res))
}

func TestGetTitleForViewListsEveryCategory(t *testing.T) {
	res := query.Result{Category: query.Recent}
	title := GetTitleForView(query.Recent, res)

	for _, c := range query.Categories {
		assert.Contains(t, title, Tab(c))
	}
	assert.Contains(t, title, "0 Items")
}
