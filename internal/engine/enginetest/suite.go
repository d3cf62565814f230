// Package enginetest holds the behavioural contract every model.Engine must pass.
package enginetest

import (
	"fmt"
	"testing"

	"github.com/horockey/kvrepo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run executes the contract against engines produced by newEngine.
// newEngine must return an empty engine on each call.
func Run(t *testing.T, newEngine func(t *testing.T) model.Engine) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, e model.Engine)
	}{
		{"Get_Absent", testGetAbsent},
		{"Put_Get", testPutGet},
		{"Put_Overwrite", testPutOverwrite},
		{"Delete", testDelete},
		{"Delete_Absent", testDeleteAbsent},
		{"DeleteRange_HalfOpen", testDeleteRangeHalfOpen},
		{"DeleteRange_Empty", testDeleteRangeEmpty},
		{"Iterator_Empty", testIteratorEmpty},
		{"Iterator_Ordered", testIteratorOrdered},
		{"Iterator_SeekToLast", testIteratorSeekToLast},
		{"Iterator_ReturnsCopies", testIteratorReturnsCopies},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newEngine(t))
		})
	}
}

func keysOf(t *testing.T, e model.Engine) []string {
	t.Helper()

	it, err := e.NewIterator()
	require.NoError(t, err)
	defer func() { require.NoError(t, it.Close()) }()

	res := []string{}
	for it.SeekToFirst(); it.Valid(); it.Next() {
		res = append(res, string(it.Key()))
	}
	return res
}

func fill(t *testing.T, e model.Engine, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, e.Put([]byte(k), []byte("v-"+k)))
	}
}

func testGetAbsent(t *testing.T, e model.Engine) {
	val, found, err := e.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
}

func testPutGet(t *testing.T, e model.Engine) {
	require.NoError(t, e.Put([]byte("k"), []byte("v")))

	val, found, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)
}

func testPutOverwrite(t *testing.T, e model.Engine) {
	require.NoError(t, e.Put([]byte("k"), []byte("v1")))
	require.NoError(t, e.Put([]byte("k"), []byte("v2")))

	val, found, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v2"), val)
	assert.Equal(t, []string{"k"}, keysOf(t, e))
}

func testDelete(t *testing.T, e model.Engine) {
	fill(t, e, "a", "b")
	require.NoError(t, e.Delete([]byte("a")))

	_, found, err := e.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"b"}, keysOf(t, e))
}

func testDeleteAbsent(t *testing.T, e model.Engine) {
	assert.NoError(t, e.Delete([]byte("missing")))
}

func testDeleteRangeHalfOpen(t *testing.T, e model.Engine) {
	fill(t, e, "a", "b", "c", "d", "e")

	require.NoError(t, e.DeleteRange([]byte("b"), []byte("d")))
	assert.Equal(t, []string{"a", "d", "e"}, keysOf(t, e))
}

func testDeleteRangeEmpty(t *testing.T, e model.Engine) {
	fill(t, e, "a")

	require.NoError(t, e.DeleteRange([]byte("x"), []byte("z")))
	require.NoError(t, e.DeleteRange([]byte("a"), []byte("a")))
	assert.Equal(t, []string{"a"}, keysOf(t, e))
}

func testIteratorEmpty(t *testing.T, e model.Engine) {
	it, err := e.NewIterator()
	require.NoError(t, err)
	defer func() { require.NoError(t, it.Close()) }()

	it.SeekToFirst()
	assert.False(t, it.Valid())

	it.SeekToLast()
	assert.False(t, it.Valid())
}

func testIteratorOrdered(t *testing.T, e model.Engine) {
	keys := []string{}
	for i := 99; i >= 0; i-- {
		keys = append(keys, fmt.Sprintf("key-%02d", i))
	}
	fill(t, e, keys...)

	got := keysOf(t, e)
	require.Len(t, got, 100)
	assert.IsIncreasing(t, got)
}

func testIteratorSeekToLast(t *testing.T, e model.Engine) {
	fill(t, e, "b", "c", "a")

	it, err := e.NewIterator()
	require.NoError(t, err)
	defer func() { require.NoError(t, it.Close()) }()

	it.SeekToLast()
	require.True(t, it.Valid())
	assert.Equal(t, []byte("c"), it.Key())

	val, err := it.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("v-c"), val)

	it.SeekToFirst()
	require.True(t, it.Valid())
	assert.Equal(t, []byte("a"), it.Key())
}

func testIteratorReturnsCopies(t *testing.T, e model.Engine) {
	fill(t, e, "a")

	it, err := e.NewIterator()
	require.NoError(t, err)
	defer func() { require.NoError(t, it.Close()) }()

	it.SeekToFirst()
	require.True(t, it.Valid())

	key := it.Key()
	key[0] = 'z'
	assert.Equal(t, []byte("a"), it.Key())
}
