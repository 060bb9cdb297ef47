package fileproc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachFileIndexed_PreservesOrder(t *testing.T) {
	files := make([]string, 100)
	for i := range files {
		files[i] = fmt.Sprintf("src/file%d.ts", i)
	}

	results, errs := ForEachFileIndexed(context.Background(), files, func(path string) (string, error) {
		return "seen:" + path, nil
	})

	assert.False(t, errs.HasErrors())
	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, "seen:"+files[i], r)
	}
}

func TestForEachFileIndexed_WithErrors(t *testing.T) {
	files := []string{"a.ts", "b.ts", "c.ts"}
	boom := errors.New("simulated error")

	var reported []string
	var calls atomic.Int32
	results, errs := ForEachFileIndexedN(context.Background(), files, 1, func(path string) (int, error) {
		calls.Add(1)
		if path == "b.ts" {
			return 0, boom
		}
		return len(path), nil
	}, nil, func(path string, err error) {
		reported = append(reported, path)
	})

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []int{4, 0, 4}, results)
	require.True(t, errs.HasErrors())
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, "b.ts", errs.Errors[0].Path)
	assert.ErrorIs(t, errs.Errors[0], boom)
	assert.Equal(t, []string{"b.ts"}, reported)
	assert.Equal(t, "b.ts: simulated error", errs.Error())
}

func TestForEachFileIndexed_Progress(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	var ticks atomic.Int32

	_, errs := ForEachFileIndexedN(context.Background(), files, 2, func(path string) (string, error) {
		if path == "c" {
			return "", errors.New("bad")
		}
		return path, nil
	}, func() { ticks.Add(1) }, nil)

	assert.Equal(t, int32(4), ticks.Load(), "progress fires for failed files too")
	assert.True(t, errs.HasErrors())
}

func TestForEachFileIndexed_Empty(t *testing.T) {
	results, errs := ForEachFileIndexed(context.Background(), nil, func(string) (int, error) {
		t.Fatal("fn should not be called")
		return 0, nil
	})
	assert.Nil(t, results)
	assert.False(t, errs.HasErrors())
}

func TestForEachFileIndexed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, errs := ForEachFileIndexed(ctx, []string{"a", "b"}, func(path string) (string, error) {
		return path, nil
	})

	assert.Equal(t, []string{"", ""}, results)
	require.Len(t, errs.Errors, 2)
	for _, e := range errs.Errors {
		assert.ErrorIs(t, e, context.Canceled)
	}
}

func TestProcessingErrorsSorted(t *testing.T) {
	errs := &ProcessingErrors{}
	errs.Add("z.ts", errors.New("z"))
	errs.Add("a.ts", errors.New("a"))
	errs.Add("m.ts", errors.New("m"))

	sorted := errs.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "a.ts", sorted[0].Path)
	assert.Equal(t, "m.ts", sorted[1].Path)
	assert.Equal(t, "z.ts", sorted[2].Path)
	assert.Contains(t, errs.Error(), "3 files failed to process")

	var nilErrs *ProcessingErrors
	assert.False(t, nilErrs.HasErrors())
	assert.Nil(t, nilErrs.Sorted())
}
