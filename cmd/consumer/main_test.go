package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/repo-downloader/internal/model"
	"github.com/thep200/repo-downloader/pkg/log"
)

type fakeUpserter struct {
	batchErr  error
	failIDs   map[int64]bool
	batches   [][]model.RepoMessage
	rows      []model.RepoMessage
	rowErrors int
}

func (f *fakeUpserter) CreateBatch(messages []model.RepoMessage) error {
	f.batches = append(f.batches, messages)
	return f.batchErr
}

func (f *fakeUpserter) Create(user, name, defaultBranch, cloneUrl string, id int64) error {
	if f.failIDs[id] {
		f.rowErrors++
		return fmt.Errorf("row rejected")
	}
	f.rows = append(f.rows, model.RepoMessage{
		ID:            id,
		User:          user,
		Name:          name,
		DefaultBranch: defaultBranch,
		CloneUrl:      cloneUrl,
	})
	return nil
}

func testBatch() []model.RepoMessage {
	return []model.RepoMessage{
		{ID: 62, User: "octocat", Name: "example", DefaultBranch: "master"},
		{ID: 1563099, User: "octocat", Name: "other", DefaultBranch: "main"},
	}
}

func TestProcessSingleBatch(t *testing.T) {
	logger, err := log.NewCslLogger()
	require.NoError(t, err)

	up := &fakeUpserter{}
	processSingleBatch(context.Background(), testBatch(), logger, up)

	require.Len(t, up.batches, 1)
	assert.Len(t, up.batches[0], 2)
	assert.Empty(t, up.rows, "no per-row upserts when the batch succeeds")
}

func TestProcessSingleBatchFallsBackPerRow(t *testing.T) {
	logger, err := log.NewCslLogger()
	require.NoError(t, err)

	up := &fakeUpserter{batchErr: fmt.Errorf("duplicate entry")}
	processSingleBatch(context.Background(), testBatch(), logger, up)

	require.Len(t, up.batches, 1)
	require.Len(t, up.rows, 2)
	assert.Equal(t, int64(62), up.rows[0].ID)
	assert.Equal(t, int64(1563099), up.rows[1].ID)
}

func TestProcessSingleBatchFallbackKeepsGoingPastBadRows(t *testing.T) {
	logger, err := log.NewCslLogger()
	require.NoError(t, err)

	up := &fakeUpserter{
		batchErr: fmt.Errorf("duplicate entry"),
		failIDs:  map[int64]bool{62: true},
	}
	processSingleBatch(context.Background(), testBatch(), logger, up)

	require.Len(t, up.rows, 1)
	assert.Equal(t, int64(1563099), up.rows[0].ID)
	assert.Equal(t, 1, up.rowErrors)
}

func TestProcessSingleBatchEmpty(t *testing.T) {
	logger, err := log.NewCslLogger()
	require.NoError(t, err)

	up := &fakeUpserter{}
	processSingleBatch(context.Background(), nil, logger, up)
	assert.Empty(t, up.batches)
}
