// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
	"github.com/cognicore/chatreport/pkg/chatreport/report"
	"github.com/cognicore/chatreport/pkg/chatreport/store"
)

// Record builds a populated report record.
func Record(id, chat string, created time.Time) store.Record {
	var hours report.HourDistribution
	hours[22] = 3
	return store.Record{
		ID:           id,
		ChatName:     chat,
		MessageCount: 42,
		Words: []report.Word{{
			Word:         "原神",
			Freq:         12,
			Contributors: []report.Contributor{{Name: "小明", UIN: "1001", Count: 7}},
			Samples:      []string{"原神启动"},
			Comment:      "启动！",
		}},
		Rankings: report.Rankings{
			{Name: "话痨榜", Entries: []report.Entry{{Name: "小明", UIN: "1001", Value: report.Value{Count: 30}}}},
			{Name: "长文王", Entries: []report.Entry{{Name: "小明", UIN: "1001", Value: report.Value{Text: "8.5字/条"}}}},
		},
		HourDistribution: hours,
		CreatedAt:        created,
	}
}

// Run exercises open against the store.Store contract.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("SaveGet", func(t *testing.T) { testSaveGet(t, open(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, open(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, open(t)) })
	t.Run("ListPaging", func(t *testing.T) { testList(t, open(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("EmptyID", func(t *testing.T) { testEmptyID(t, open(t)) })
}

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testSaveGet(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	want := Record("r1", "测试群", epoch)
	require.NoError(t, st.SaveReport(ctx, want))

	got, err := st.GetReport(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	got.CreatedAt = want.CreatedAt
	assert.Equal(t, want, got)
}

func testNotFound(t *testing.T, st store.Store) {
	defer st.Close()
	_, err := st.GetReport(context.Background(), "missing")
	assert.True(t, errors.Is(err, internalerr.ErrNotFound))
}

func testReplace(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	r := Record("r1", "测试群", epoch)
	require.NoError(t, st.SaveReport(ctx, r))

	r.MessageCount = 99
	require.NoError(t, st.SaveReport(ctx, r))

	got, err := st.GetReport(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 99, got.MessageCount)

	page, err := st.ListReports(ctx, store.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func testList(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		chat := "群一"
		if i%2 == 1 {
			chat = "群二"
		}
		require.NoError(t, st.SaveReport(ctx, Record(id, chat, epoch.Add(time.Duration(i)*time.Minute))))
	}

	page, err := st.ListReports(ctx, store.ListOptions{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Reports, 2)
	assert.Equal(t, "e", page.Reports[0].ID, "newest first")
	assert.Equal(t, "d", page.Reports[1].ID)

	page, err = st.ListReports(ctx, store.ListOptions{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Reports, 1)
	assert.Equal(t, "a", page.Reports[0].ID)

	page, err = st.ListReports(ctx, store.ListOptions{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Reports)
	assert.NotNil(t, page.Reports)

	page, err = st.ListReports(ctx, store.ListOptions{ChatName: "群二"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, store.DefaultPageSize, page.PageSize)
	require.Len(t, page.Reports, 2)
	assert.Equal(t, "d", page.Reports[0].ID)
	assert.Equal(t, "b", page.Reports[1].ID)
}

func testDelete(t *testing.T, st store.Store) {
	defer st.Close()
	ctx := context.Background()
	require.NoError(t, st.SaveReport(ctx, Record("r1", "测试群", epoch)))

	require.NoError(t, st.DeleteReport(ctx, "r1"))
	_, err := st.GetReport(ctx, "r1")
	assert.True(t, errors.Is(err, internalerr.ErrNotFound))

	err = st.DeleteReport(ctx, "r1")
	assert.True(t, errors.Is(err, internalerr.ErrNotFound))
}

func testEmptyID(t *testing.T, st store.Store) {
	defer st.Close()
	err := st.SaveReport(context.Background(), Record("", "测试群", epoch))
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}
