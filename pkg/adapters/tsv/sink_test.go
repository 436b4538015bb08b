package tsv_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/hdt/pkg/adapters/tsv"
	"github.com/aretw0/hdt/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
}

func TestResolvePath(t *testing.T) {
	t.Run("FreshDirectory", func(t *testing.T) {
		dir := t.TempDir()
		path, err := tsv.ResolvePath(dir, "001")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "sub-001_s_hdt.tsv"), path)
	})

	t.Run("BaseExists", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "sub-001_s_hdt.tsv")
		path, err := tsv.ResolvePath(dir, "001")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "sub-001_s_hdt_a.tsv"), path)
	})

	t.Run("PicksAfterHighestSuffix", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "sub-001_s_hdt.tsv")
		touch(t, dir, "sub-001_s_hdt_a.tsv")
		touch(t, dir, "sub-001_s_hdt_C.tsv")
		touch(t, dir, "sub-001_s_hdt_notes.tsv")
		touch(t, dir, "sub-001_s_hdt_1.tsv")
		touch(t, dir, "sub-002_s_hdt_f.tsv")
		path, err := tsv.ResolvePath(dir, "001")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "sub-001_s_hdt_d.tsv"), path)
	})

	t.Run("Exhausted", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "sub-001_s_hdt.tsv")
		touch(t, dir, "sub-001_s_hdt_z.tsv")
		_, err := tsv.ResolvePath(dir, "001")
		assert.Error(t, err)
	})
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSink_WritesHeaderAndRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sink, err := tsv.Create(dir, "001")
	require.NoError(t, err)

	ctx := context.Background()
	resp := domain.Response{Label: domain.LabelBefore, Code: domain.CodeBefore}
	require.NoError(t, sink.Append(ctx, domain.NewTrialRecord("400_1", 1, 400, resp, 55)))
	require.NoError(t, sink.Append(ctx, domain.NewQuestionRecord("Breathless", 10)))

	rows := readRows(t, sink.Path())
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Participant ID", "001"}, rows[0])
	assert.Equal(t, domain.Columns, rows[1])
	assert.Equal(t, []string{"400_1", "1", "400", "before", "0", "55"}, rows[2])
	assert.Equal(t, []string{"Post_task_question", "Breathless", "NA", "NA", "NA", "10"}, rows[3])
}

func TestSink_SecondSessionDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	first, err := tsv.Create(dir, "001")
	require.NoError(t, err)
	second, err := tsv.Create(dir, "001")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path(), second.Path())
	assert.Equal(t, "sub-001_s_hdt_a.tsv", filepath.Base(second.Path()))
	assert.Len(t, readRows(t, first.Path()), 2)
}

func TestSink_AppendAfterClose(t *testing.T) {
	sink, err := tsv.Create(t.TempDir(), "001")
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	err = sink.Append(context.Background(), domain.NewQuestionRecord("x", 1))
	assert.ErrorIs(t, err, tsv.ErrClosed)
}
