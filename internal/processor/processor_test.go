package processor_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/horockey/kvrepo/internal/engine/inmemory_engine"
	"github.com/horockey/kvrepo/internal/model"
	"github.com/horockey/kvrepo/internal/processor"
	"github.com/horockey/kvrepo/internal/serializer"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk on fire")

// recordingEngine fails selected calls and records the call sequence.
type recordingEngine struct {
	model.Engine
	mu       sync.Mutex
	calls    []string
	failPut  bool
	failGet  bool
	failDel  bool
	failIter bool
}

func (e *recordingEngine) record(call string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
}

func (e *recordingEngine) Put(key, value []byte) error {
	e.record("put " + string(key))
	if e.failPut {
		return errDisk
	}
	return e.Engine.Put(key, value)
}

func (e *recordingEngine) Get(key []byte) ([]byte, bool, error) {
	e.record("get " + string(key))
	if e.failGet {
		return nil, false, errDisk
	}
	return e.Engine.Get(key)
}

func (e *recordingEngine) Delete(key []byte) error {
	e.record("delete " + string(key))
	if e.failDel {
		return errDisk
	}
	return e.Engine.Delete(key)
}

func (e *recordingEngine) DeleteRange(low, high []byte) error {
	e.record(fmt.Sprintf("delete_range %s %s", low, high))
	return e.Engine.DeleteRange(low, high)
}

func (e *recordingEngine) NewIterator() (model.Iterator, error) {
	if e.failIter {
		return nil, errDisk
	}
	return e.Engine.NewIterator()
}

func setup(t *testing.T) (*processor.Processor[string, int], *recordingEngine) {
	t.Helper()

	eng := &recordingEngine{Engine: inmemory_engine.New()}
	return processor.New(
		eng,
		model.Serializer[string](serializer.String[string]{}),
		model.Serializer[int](serializer.Int[int]{}),
		zerolog.Nop(),
	), eng
}

func Test_Save_FindByKey(t *testing.T) {
	pr, _ := setup(t)

	require.NoError(t, pr.Save("a", 1))

	res, err := pr.FindByKey("a")
	require.NoError(t, err)
	val, ok := res.Get()
	assert.True(t, ok)
	assert.Equal(t, 1, val)
}

func Test_FindByKey_Absent(t *testing.T) {
	pr, _ := setup(t)

	res, err := pr.FindByKey("missing")
	require.NoError(t, err)
	assert.False(t, res.IsPresent())
}

func Test_FindByKey_EngineErrorIsNotAbsence(t *testing.T) {
	pr, eng := setup(t)
	eng.failGet = true

	res, err := pr.FindByKey("a")
	assert.False(t, res.IsPresent())

	var engErr model.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "get", engErr.Op)
	assert.ErrorIs(t, err, errDisk)
}

func Test_FindByKey_UndecodableValue(t *testing.T) {
	pr, eng := setup(t)
	require.NoError(t, eng.Engine.Put([]byte("a"), []byte("short")))

	_, err := pr.FindByKey("a")

	var desErr model.DeserializationError
	require.ErrorAs(t, err, &desErr)
	assert.Equal(t, "int", desErr.Type)
}

func Test_Save_Overwrite(t *testing.T) {
	pr, _ := setup(t)

	require.NoError(t, pr.Save("k", 1))
	require.NoError(t, pr.Save("k", 2))

	res, err := pr.FindByKey("k")
	require.NoError(t, err)
	assert.Equal(t, 2, res.OrElse(0))

	all, err := pr.FindAll()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, all)
}

func Test_Save_EngineError(t *testing.T) {
	pr, eng := setup(t)
	eng.failPut = true

	err := pr.Save("k", 1)
	var engErr model.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "put", engErr.Op)

	// lock must have been released
	eng.failPut = false
	require.NoError(t, pr.Save("k", 1))
}

func Test_Save_SerializationError(t *testing.T) {
	errEncode := errors.New("cannot encode")
	pr := processor.New(
		inmemory_engine.New(),
		model.Serializer[string](serializer.String[string]{}),
		model.Serializer[int](model.SerializerFuncs[int]{
			EncodeFunc: func(int) ([]byte, error) { return nil, errEncode },
			DecodeFunc: serializer.Int[int]{}.Decode,
		}),
		zerolog.Nop(),
	)

	err := pr.Save("k", 1)
	var serErr model.SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.ErrorIs(t, err, errEncode)
}

func Test_EmptyKey_IsRejected(t *testing.T) {
	pr, eng := setup(t)

	err := pr.Save("", 1)
	assert.ErrorIs(t, err, model.ErrEmptyKey)

	_, err = pr.FindByKey("")
	assert.ErrorIs(t, err, model.ErrEmptyKey)

	err = pr.DeleteByKey("")
	assert.ErrorIs(t, err, model.ErrEmptyKey)

	assert.Empty(t, eng.calls)
}

func Test_DeleteByKey(t *testing.T) {
	pr, _ := setup(t)

	require.NoError(t, pr.Save("k", 1))
	require.NoError(t, pr.DeleteByKey("k"))

	res, err := pr.FindByKey("k")
	require.NoError(t, err)
	assert.False(t, res.IsPresent())

	// absent key is a no-op
	require.NoError(t, pr.DeleteByKey("k"))
}

func Test_FindAll_Ordered(t *testing.T) {
	pr, _ := setup(t)

	require.NoError(t, pr.Save("a", 1))
	require.NoError(t, pr.Save("c", 3))
	require.NoError(t, pr.Save("b", 2))

	all, err := pr.FindAll()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, all)
}

func Test_FindAll_Empty(t *testing.T) {
	pr, _ := setup(t)

	all, err := pr.FindAll()
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func Test_FindAll_AbortsOnBadEntry(t *testing.T) {
	pr, eng := setup(t)

	require.NoError(t, pr.Save("a", 1))
	require.NoError(t, pr.Save("c", 3))
	require.NoError(t, eng.Engine.Put([]byte("b"), []byte{0xde, 0xad}))

	all, err := pr.FindAll()
	assert.Nil(t, all)

	var desErr model.DeserializationError
	require.ErrorAs(t, err, &desErr)
	assert.ErrorIs(t, err, serializer.ErrInvalidLength)

	// shared lock was released
	require.NoError(t, pr.DeleteByKey("b"))
}

func Test_FindAll_IteratorError(t *testing.T) {
	pr, eng := setup(t)
	eng.failIter = true

	_, err := pr.FindAll()
	var engErr model.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "new_iterator", engErr.Op)
}

func Test_DeleteAll_Empty(t *testing.T) {
	pr, eng := setup(t)

	require.NoError(t, pr.DeleteAll())
	assert.Empty(t, eng.calls)
}

func Test_DeleteAll_RangeThenLast(t *testing.T) {
	pr, eng := setup(t)

	keys := []string{"k3", "k1", "k2"}
	for i, k := range keys {
		require.NoError(t, pr.Save(k, i))
	}
	eng.calls = nil

	require.NoError(t, pr.DeleteAll())
	assert.Equal(t, []string{"delete_range k1 k3", "delete k3"}, eng.calls)

	all, err := pr.FindAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, k := range keys {
		res, err := pr.FindByKey(k)
		require.NoError(t, err)
		assert.False(t, res.IsPresent())
	}
}

func Test_DeleteAll_SingleEntry(t *testing.T) {
	pr, _ := setup(t)

	require.NoError(t, pr.Save("only", 1))
	require.NoError(t, pr.DeleteAll())

	all, err := pr.FindAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func Test_DeleteAll_EngineError(t *testing.T) {
	pr, eng := setup(t)
	require.NoError(t, pr.Save("a", 1))
	eng.failDel = true

	err := pr.DeleteAll()
	var engErr model.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "delete", engErr.Op)

	eng.failDel = false
	require.NoError(t, pr.DeleteAll())
}

func Test_ConcurrentSaves(t *testing.T) {
	pr, _ := setup(t)
	const n = 200

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pr.Save(fmt.Sprintf("key-%03d", i), i))
		}()
	}
	wg.Wait()

	all, err := pr.FindAll()
	require.NoError(t, err)
	assert.Equal(t, lo.Range(n), all)
}

func Test_Metrics(t *testing.T) {
	pr, _ := setup(t)
	assert.Len(t, pr.Metrics(), 6)
}
