package kvrepo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/kvrepo"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"
)

func setupDB(t *testing.T) *badger.DB {
	dir := t.TempDir()

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		t.Fatalf("failed to open badger db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func newRepo[K, V any](t *testing.T, engine kvrepo.Engine) *kvrepo.Repository[K, V] {
	t.Helper()

	repo, err := kvrepo.New[K, V](
		engine,
		kvrepo.WithLogger[K, V](zerolog.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	return repo
}

func await[T any](t *testing.T, fut *kvrepo.Future[T]) (T, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return fut.Await(ctx)
}

func mustAwait[T any](t *testing.T, fut *kvrepo.Future[T]) T {
	t.Helper()

	res, err := await(t, fut)
	require.NoError(t, err)
	return res
}

func Test_New_NilEngine(t *testing.T) {
	_, err := kvrepo.New[string, string](nil)
	assert.Error(t, err)
}

func Test_New_UnresolvableSerializer(t *testing.T) {
	type custom struct{ A int }

	_, err := kvrepo.New[string, custom](kvrepo.NewInMemoryEngine())
	assert.ErrorIs(t, err, kvrepo.ErrNoSerializer)
}

func Test_New_InvalidOptions(t *testing.T) {
	eng := kvrepo.NewInMemoryEngine()

	_, err := kvrepo.New[string, string](eng, kvrepo.WithWorkersCount[string, string](0))
	assert.Error(t, err)

	_, err = kvrepo.New[string, string](eng, kvrepo.WithQueueSize[string, string](-1))
	assert.Error(t, err)

	_, err = kvrepo.New[string, string](eng, kvrepo.WithKeySerializer[string, string](nil))
	assert.Error(t, err)

	_, err = kvrepo.New[string, string](eng, kvrepo.WithValueSerializer[string, string](nil))
	assert.Error(t, err)

	_, err = kvrepo.New[string, string](eng, kvrepo.WithRegistry[string, string](nil))
	assert.Error(t, err)
}

func Test_RoundTrip(t *testing.T) {
	repo := newRepo[string, int64](t, kvrepo.NewBadgerEngine(setupDB(t)))

	rapid.Check(t, func(rt *rapid.T) {
		key := rapid.StringN(1, 32, -1).Draw(rt, "key")
		val := rapid.Int64().Draw(rt, "val")

		_, err := await(t, repo.Save(key, val))
		require.NoError(rt, err)

		res, err := await(t, repo.FindByKey(key))
		require.NoError(rt, err)

		got, ok := res.Get()
		assert.True(rt, ok)
		assert.Equal(rt, val, got)
	})
}

func Test_FindByKey_Absent(t *testing.T) {
	repo := newRepo[string, string](t, kvrepo.NewBadgerEngine(setupDB(t)))

	res, err := await(t, repo.FindByKey("missing"))
	require.NoError(t, err)
	assert.False(t, res.IsPresent())
}

func Test_Overwrite(t *testing.T) {
	repo := newRepo[string, string](t, kvrepo.NewBadgerEngine(setupDB(t)))

	mustAwait(t, repo.Save("k", "v1"))
	mustAwait(t, repo.Save("k", "v2"))

	res := mustAwait(t, repo.FindByKey("k"))
	assert.Equal(t, kvrepo.Some("v2"), res)

	assert.Equal(t, []string{"v2"}, mustAwait(t, repo.FindAll()))
}

func Test_Delete(t *testing.T) {
	repo := newRepo[string, string](t, kvrepo.NewBadgerEngine(setupDB(t)))

	mustAwait(t, repo.Save("k", "v"))
	mustAwait(t, repo.DeleteByKey("k"))

	assert.Equal(t, kvrepo.None[string](), mustAwait(t, repo.FindByKey("k")))

	_, err := await(t, repo.DeleteByKey("k"))
	assert.NoError(t, err)
}

func Test_DeleteAll(t *testing.T) {
	repo := newRepo[int, string](t, kvrepo.NewBadgerEngine(setupDB(t)))

	_, err := await(t, repo.DeleteAll())
	require.NoError(t, err)

	const n = 50
	for i := range n {
		mustAwait(t, repo.Save(i, fmt.Sprint(i)))
	}

	mustAwait(t, repo.DeleteAll())

	assert.Empty(t, mustAwait(t, repo.FindAll()))
	for i := range n {
		assert.False(t, mustAwait(t, repo.FindByKey(i)).IsPresent())
	}
}

func Test_FindAll_Ordered(t *testing.T) {
	repo := newRepo[string, int](t, kvrepo.NewBadgerEngine(setupDB(t)))

	mustAwait(t, repo.Save("a", 1))
	mustAwait(t, repo.Save("c", 3))
	mustAwait(t, repo.Save("b", 2))

	assert.Equal(t, []int{1, 2, 3}, mustAwait(t, repo.FindAll()))
}

func Test_FindAll_NegativeIntKeysOrdered(t *testing.T) {
	repo := newRepo[int, int](t, kvrepo.NewInMemoryEngine())

	for _, k := range []int{5, -3, 0, -100, 42} {
		mustAwait(t, repo.Save(k, k))
	}

	assert.Equal(t, []int{-100, -3, 0, 5, 42}, mustAwait(t, repo.FindAll()))
}

func Test_ConcurrentSaves(t *testing.T) {
	repo := newRepo[string, int](t, kvrepo.NewBadgerEngine(setupDB(t)))
	const n = 100

	var eg errgroup.Group
	for i := range n {
		eg.Go(func() error {
			_, err := await(t, repo.Save(fmt.Sprintf("key-%03d", i), i))
			return err
		})
	}
	require.NoError(t, eg.Wait())

	assert.Equal(t, lo.Range(n), mustAwait(t, repo.FindAll()))
}

type pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

func Test_FindAll_NeverSeesPartialWrites(t *testing.T) {
	repo, err := kvrepo.New[string, pair](
		kvrepo.NewBadgerEngine(setupDB(t)),
		kvrepo.WithValueSerializer[string, pair](kvrepo.JSONSerializer[pair]{}),
		kvrepo.WithLogger[string, pair](zerolog.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	keys := []string{"x", "y", "z"}
	for _, k := range keys {
		mustAwait(t, repo.Save(k, pair{}))
	}

	var eg errgroup.Group
	eg.Go(func() error {
		for i := 1; i <= 200; i++ {
			for _, k := range keys {
				if _, err := await(t, repo.Save(k, pair{A: i, B: i})); err != nil {
					return err
				}
			}
		}
		return nil
	})
	eg.Go(func() error {
		for range 100 {
			all, err := await(t, repo.FindAll())
			if err != nil {
				return err
			}
			if len(all) != len(keys) {
				return fmt.Errorf("got %d entries", len(all))
			}
			for _, p := range all {
				if p.A != p.B {
					return fmt.Errorf("torn entry %+v", p)
				}
			}
		}
		return nil
	})
	require.NoError(t, eg.Wait())
}

func Test_FindAll_CorruptedEntry(t *testing.T) {
	db := setupDB(t)
	repo := newRepo[string, int](t, kvrepo.NewBadgerEngine(db))

	mustAwait(t, repo.Save("a", 1))
	mustAwait(t, repo.Save("c", 3))
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("b"), []byte("garbage"))
	}))

	all, err := await(t, repo.FindAll())
	assert.Nil(t, all)

	var desErr kvrepo.DeserializationError
	assert.ErrorAs(t, err, &desErr)
}

type brokenEngine struct {
	kvrepo.Engine
}

var errBroken = errors.New("io failure")

func (brokenEngine) Get([]byte) ([]byte, bool, error) {
	return nil, false, errBroken
}

func Test_FindByKey_FailureIsNotAbsence(t *testing.T) {
	repo := newRepo[string, string](t, brokenEngine{Engine: kvrepo.NewInMemoryEngine()})

	res, err := await(t, repo.FindByKey("k"))
	assert.False(t, res.IsPresent())

	var engErr kvrepo.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.ErrorIs(t, err, errBroken)
}

func Test_Save_SerializationFailure(t *testing.T) {
	repo := newRepo[string, string](t, kvrepo.NewInMemoryEngine())

	_, err := await(t, repo.Save("", "v"))

	var serErr kvrepo.SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.ErrorIs(t, err, kvrepo.ErrEmptyKey)
}

func Test_Close(t *testing.T) {
	repo, err := kvrepo.New[string, string](
		kvrepo.NewInMemoryEngine(),
		kvrepo.WithLogger[string, string](zerolog.Nop()),
		kvrepo.WithWorkersCount[string, string](1),
	)
	require.NoError(t, err)

	fut := repo.Save("k", "v")
	repo.Close()

	_, err = fut.Get()
	require.NoError(t, err)

	_, err = repo.FindByKey("k").Get()
	assert.ErrorIs(t, err, kvrepo.ErrPoolClosed)

	// the sync variant works without the pool
	res, err := repo.Sync().FindByKey("k")
	require.NoError(t, err)
	assert.Equal(t, kvrepo.Some("v"), res)
}

func Test_CustomRegistry(t *testing.T) {
	type userID string

	reg := kvrepo.DefaultRegistry()
	require.NoError(t, kvrepo.Register[userID](reg, kvrepo.StringSerializer[userID]{}))

	repo, err := kvrepo.New[userID, float64](
		kvrepo.NewInMemoryEngine(),
		kvrepo.WithRegistry[userID, float64](reg),
		kvrepo.WithLogger[userID, float64](zerolog.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	mustAwait(t, repo.Save("u-1", 1.5))
	assert.Equal(t, kvrepo.Some(1.5), mustAwait(t, repo.FindByKey("u-1")))
}

func Test_Metrics(t *testing.T) {
	repo := newRepo[string, string](t, kvrepo.NewBadgerEngine(setupDB(t)))
	assert.NotEmpty(t, repo.Metrics())
}
