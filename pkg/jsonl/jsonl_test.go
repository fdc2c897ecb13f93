package jsonl

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Seq int    `json:"seq"`
	Msg string `json:"msg"`
}

func readRecords(t *testing.T, f *File) []record {
	t.Helper()
	var out []record
	require.NoError(t, f.ReadAll(func(raw json.RawMessage) error {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	}))
	return out
}

func TestFile_AppendReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	f, err := Open(path, WithSync())
	require.NoError(t, err)

	require.NoError(t, f.Append(record{Seq: 1, Msg: "a"}))
	require.NoError(t, f.Append(record{Seq: 2, Msg: "b"}))
	assert.Equal(t, []record{{1, "a"}, {2, "b"}}, readRecords(t, f))

	// ReadAll 之後仍然附加在檔尾
	require.NoError(t, f.Append(record{Seq: 3, Msg: "c"}))
	require.NoError(t, f.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []record{{1, "a"}, {2, "b"}, {3, "c"}}, readRecords(t, reopened))
}

func TestFile_ReadAllStopsOnCallbackError(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "data.jsonl"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.Append(record{Seq: 1}))
	require.NoError(t, f.Append(record{Seq: 2}))

	errStop := errors.New("stop")
	calls := 0
	err = f.ReadAll(func(json.RawMessage) error {
		calls++
		return errStop
	})
	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, calls)
}

func TestFile_ConcurrentAppend(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "data.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, f.Append(record{Seq: i, Msg: "concurrent"}))
		}(i)
	}
	wg.Wait()

	assert.Len(t, readRecords(t, f), 50)
}
