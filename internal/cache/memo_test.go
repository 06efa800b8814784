package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	s.ttls[key] = ttl
	return nil
}

type countingRecorder struct{ hits, misses int }

func (r *countingRecorder) CacheResult(hit bool) {
	if hit {
		r.hits++
		return
	}
	r.misses++
}

type totals struct {
	Matches int `json:"matches"`
}

func TestRemember(t *testing.T) {
	Convey("Given a memo over an in-memory store", t, func() {
		ctx := context.Background()
		store := newMemoryStore()
		rec := &countingRecorder{}
		memo := NewMemo(store, WithEpoch("2022-23"), WithTTL(time.Minute), WithRecorder(rec))

		calls := 0
		load := func(context.Context) (totals, error) {
			calls++
			return totals{Matches: 1230}, nil
		}
		key := memo.Key("league", "totals")

		Convey("When the key is built", func() {
			Convey("Then it carries the prefix and epoch", func() {
				So(key, ShouldEqual, "courtside:2022-23:league:totals")
				So(memo.Prefix(), ShouldEqual, "courtside:2022-23:")
			})

			Convey("Then separators inside a part cannot collide", func() {
				So(memo.Key("matchups", "A:B", "C"), ShouldNotEqual, memo.Key("matchups", "A", "B:C"))
				So(memo.Key("matchups", "A:B", "C"), ShouldEqual, "courtside:2022-23:matchups:A%3AB:C")
				So(memo.Key("teams", "*"), ShouldEqual, "courtside:2022-23:teams:%2A")
			})
		})

		Convey("When a value is remembered twice", func() {
			first, err := Remember(ctx, memo, key, load)
			So(err, ShouldBeNil)
			second, err := Remember(ctx, memo, key, load)
			So(err, ShouldBeNil)

			Convey("Then the loader runs once", func() {
				So(calls, ShouldEqual, 1)
				So(second, ShouldResemble, first)
				So(rec.misses, ShouldEqual, 1)
				So(rec.hits, ShouldEqual, 1)
				So(store.ttls[key], ShouldEqual, time.Minute)
			})
		})

		Convey("When the loader fails", func() {
			_, err := Remember(ctx, memo, key, func(context.Context) (totals, error) {
				return totals{}, errors.New("store down")
			})

			Convey("Then the error is returned and nothing is stored", func() {
				So(err, ShouldNotBeNil)
				So(store.entries, ShouldBeEmpty)
			})
		})

		Convey("When the stored entry cannot be decoded", func() {
			store.entries[key] = []byte("not json")
			v, err := Remember(ctx, memo, key, load)

			Convey("Then it is treated as a miss", func() {
				So(err, ShouldBeNil)
				So(v.Matches, ShouldEqual, 1230)
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When the store is unreachable", func() {
			store.getErr = errors.New("connection refused")
			store.setErr = errors.New("connection refused")
			v, err := Remember(ctx, memo, key, load)

			Convey("Then the loader still answers", func() {
				So(err, ShouldBeNil)
				So(v.Matches, ShouldEqual, 1230)
			})
		})
	})

	Convey("Given a nil memo", t, func() {
		var memo *Memo
		v, err := Remember(context.Background(), memo, memo.Key("x"), func(context.Context) (int, error) { return 7, nil })

		Convey("Then the loader is called directly", func() {
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 7)
		})
	})
}
