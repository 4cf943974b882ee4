package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeCorpusEmpty, "no cases loaded")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeCorpusEmpty, err.Code)
	assert.Equal(t, "no cases loaded", err.Message)
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, "[CORPUS_001] no cases loaded", err.Error())
}

func TestError_WithDetail(t *testing.T) {
	err := New(ErrCodeSnapshotCorrupt, "snapshot unreadable").WithDetail("path=/tmp/graph.json")
	assert.Equal(t, "[CORPUS_003] snapshot unreadable: path=/tmp/graph.json", err.Error())

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("ignored"))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))

	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "failed to load corpus")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(ErrCodeEngineNotLoaded, "load first")
	outer := Wrap(inner, CodeUnknown, "recommend failed")
	assert.Equal(t, ErrCodeEngineNotLoaded, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeSnapshotVersion, "version 2 expected 1")
	wrapped := fmt.Errorf("engine: %w", inner)

	assert.True(t, IsCode(wrapped, ErrCodeSnapshotVersion))
	assert.False(t, IsCode(wrapped, ErrCodeCorpusEmpty))
	assert.False(t, IsCode(nil, ErrCodeCorpusEmpty))
}

func TestIsLoadError(t *testing.T) {
	for _, code := range []ErrorCode{
		ErrCodeCorpusEmpty, ErrCodeCorpusMalformed,
		ErrCodeSnapshotCorrupt, ErrCodeSnapshotVersion, ErrCodeSnapshotNotFound,
	} {
		assert.True(t, IsLoadError(New(code, "x")), "code %s", code)
	}
	assert.False(t, IsLoadError(New(ErrCodeEngineNotLoaded, "x")))
	assert.False(t, IsLoadError(errors.New("plain")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(errors.New("plain")))
	assert.Equal(t, ErrCodeCacheError, GetCode(New(ErrCodeCacheError, "x")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ErrCodeValidation.HTTPStatus())
	assert.Equal(t, 404, ErrCodeSnapshotNotFound.HTTPStatus())
	assert.Equal(t, 409, ErrCodeEngineNotLoaded.HTTPStatus())
	assert.Equal(t, 500, ErrCodeInternal.HTTPStatus())
	assert.Equal(t, 500, CodeUnknown.HTTPStatus())
}

func TestUnwrapChain(t *testing.T) {
	root := errors.New("io failure")
	mid := Wrap(root, ErrCodeStorageError, "object read failed")
	top := Wrap(mid, ErrCodeSnapshotCorrupt, "snapshot decode failed")

	assert.ErrorIs(t, top, root)

	var ae *AppError
	require.True(t, errors.As(top, &ae))
	assert.Equal(t, ErrCodeSnapshotCorrupt, ae.Code)
}
