package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Normalized(t *testing.T) {
	tests := []struct {
		name         string
		query        Query
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults", query: Query{}, wantPage: 1, wantPageSize: 20},
		{name: "negative values", query: Query{Page: -3, PageSize: -1}, wantPage: 1, wantPageSize: 20},
		{name: "explicit values kept", query: Query{Page: 4, PageSize: 50}, wantPage: 4, wantPageSize: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := tt.query.Normalized()
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestPagedResult_Meta(t *testing.T) {
	p := PagedResult[int]{Page: 2, PageSize: 10, TotalItems: 25}

	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrevious())

	last := PagedResult[int]{Page: 3, PageSize: 10, TotalItems: 25}
	assert.False(t, last.HasNext())
}

func TestPageSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, PageSlice(items, 1, 2))
	assert.Equal(t, []int{5}, PageSlice(items, 3, 2))
	assert.Empty(t, PageSlice(items, 4, 2))
	assert.Empty(t, PageSlice(items, 10, 2))
}

type balanceLike struct {
	UserID int
	Days   float64
}

type groupLike struct {
	UserID  int
	Entries []float64
}

func foldByUser(rows []balanceLike) []groupLike {
	grouped := make([]groupLike, 0)
	index := map[int]int{}
	for _, row := range rows {
		i, ok := index[row.UserID]
		if !ok {
			grouped = append(grouped, groupLike{UserID: row.UserID})
			i = len(grouped) - 1
			index[row.UserID] = i
		}
		grouped[i].Entries = append(grouped[i].Entries, row.Days)
	}
	return grouped
}

func TestGroupPage(t *testing.T) {
	rows := []balanceLike{
		{UserID: 1, Days: 10},
		{UserID: 1, Days: 2.5},
		{UserID: 2, Days: 7},
		{UserID: 3, Days: 1},
		{UserID: 3, Days: 4},
		{UserID: 3, Days: 9},
	}

	keyOf := func(r balanceLike) int { return r.UserID }

	t.Run("totals count keys not rows", func(t *testing.T) {
		result := GroupPage(rows, Query{Page: 1, PageSize: 10}, keyOf, foldByUser)

		assert.Equal(t, int64(3), result.TotalItems)
		assert.Len(t, result.Items, 3)
	})

	t.Run("one key's rows are never split across pages", func(t *testing.T) {
		for pageSize := 1; pageSize <= 4; pageSize++ {
			seen := map[int]int{}
			page := 1
			for {
				result := GroupPage(rows, Query{Page: page, PageSize: pageSize}, keyOf, foldByUser)
				if len(result.Items) == 0 {
					break
				}
				for _, g := range result.Items {
					seen[g.UserID]++
				}
				page++
			}
			for userID, appearances := range seen {
				assert.Equalf(t, 1, appearances, "user %d split across pages at pageSize %d", userID, pageSize)
			}
			assert.Len(t, seen, 3)
		}
	})

	t.Run("second page picks up the next distinct key with all its rows", func(t *testing.T) {
		result := GroupPage(rows, Query{Page: 3, PageSize: 1}, keyOf, foldByUser)

		assert.Len(t, result.Items, 1)
		assert.Equal(t, 3, result.Items[0].UserID)
		assert.Equal(t, []float64{1, 4, 9}, result.Items[0].Entries)
	})
}
