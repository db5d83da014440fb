package excellent

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluationError(t *testing.T) {
	t.Run("with eval error cause", func(t *testing.T) {
		cause := NewEvalError(ErrorKindConversion, "cannot convert text to number")
		err := NewEvaluationError("@(a + 1)", cause)

		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))

		expr, ok := customErr.GetMetadata(MetaKeyExpression)
		assert.True(t, ok)
		assert.Equal(t, "@(a + 1)", expr)

		kind, ok := customErr.GetMetadata(MetaKeyKind)
		assert.True(t, ok)
		assert.Equal(t, ErrorKindConversion.String(), kind)

		got, ok := ErrorKindOf(err)
		assert.True(t, ok)
		assert.Equal(t, ErrorKindConversion, got)
	})

	t.Run("with plain cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewEvaluationError("x", cause)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		_, ok := customErr.GetMetadata(MetaKeyKind)
		assert.False(t, ok)

		_, ok = ErrorKindOf(err)
		assert.False(t, ok)
	})
}

func TestNewConfigError(t *testing.T) {
	cause := errors.New("yaml: line 1")

	err := NewConfigError(ErrMsgConfigParse, cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), ErrMsgConfigParse)

	err = NewConfigError(ErrMsgInvalidMaxDepth, nil)
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	assert.Contains(t, err.Error(), ErrMsgInvalidMaxDepth)
}

func TestNewUnknownLibraryError(t *testing.T) {
	err := NewUnknownLibraryError("finance")

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	lib, ok := customErr.GetMetadata(MetaKeyLibrary)
	assert.True(t, ok)
	assert.Equal(t, "finance", lib)
}

func TestStorageErrors(t *testing.T) {
	notFound := NewTemplateNotFoundError("welcome", "fra")
	assert.True(t, errors.Is(notFound, ErrTemplateNotFound))
	assert.False(t, errors.Is(notFound, ErrStorageClosed))

	var customErr *cuserr.CustomError
	require.True(t, errors.As(notFound, &customErr))
	name, ok := customErr.GetMetadata(MetaKeyTemplate)
	assert.True(t, ok)
	assert.Equal(t, "welcome", name)
	lang, ok := customErr.GetMetadata(MetaKeyLanguage)
	assert.True(t, ok)
	assert.Equal(t, "fra", lang)

	closed := NewStorageClosedError()
	assert.True(t, errors.Is(closed, ErrStorageClosed))

	assert.Error(t, NewStorageError(ErrMsgQueryFailed, nil))
}
