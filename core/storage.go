package core

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

type Storager[K comparable, V any] interface {
	Put(k K, v V) error
	Get(k K) (V, error)
}

// MemStore is an unbounded store. All access is serialized through a
// single goroutine; Close stops it.
type MemStore[K comparable, V any] struct {
	putChan  chan *putRequest[K, V]
	readChan chan *getRequest[K, V]
	quit     chan struct{}
	data     map[K]V
}

type putRequest[K comparable, V any] struct {
	key K
	val V
}

type getRequest[K comparable, V any] struct {
	key      K
	response chan<- *lookupResult[V]
}

type lookupResult[V any] struct {
	v      V
	exists bool
}

func NewMemStore[K comparable, V any]() *MemStore[K, V] {
	s := &MemStore[K, V]{
		putChan:  make(chan *putRequest[K, V]),
		readChan: make(chan *getRequest[K, V]),
		quit:     make(chan struct{}),
		data:     make(map[K]V),
	}

	go s.handleAccess()
	return s
}

func (s *MemStore[K, V]) handleAccess() {
	for {
		select {
		case req := <-s.putChan:
			s.data[req.key] = req.val
		case req := <-s.readChan:
			v, ok := s.data[req.key]
			req.response <- &lookupResult[V]{
				v:      v,
				exists: ok,
			}
		case <-s.quit:
			return
		}
	}
}

func (s *MemStore[K, V]) Put(k K, v V) error {
	select {
	case s.putChan <- &putRequest[K, V]{key: k, val: v}:
		return nil
	case <-s.quit:
		return fmt.Errorf("put: store closed")
	}
}

func (s *MemStore[K, V]) Get(k K) (V, error) {
	var empty V
	respCh := make(chan *lookupResult[V], 1)
	req := &getRequest[K, V]{
		key:      k,
		response: respCh,
	}
	select {
	case s.readChan <- req:
	case <-s.quit:
		return empty, fmt.Errorf("get: store closed")
	}
	resp := <-respCh
	if !resp.exists {
		return empty, fmt.Errorf("key %v does not exist in store", k)
	}
	return resp.v, nil
}

func (s *MemStore[K, V]) Close() {
	close(s.quit)
}

// LRUStore keeps the most recently used entries up to a fixed size
type LRUStore[K comparable, V any] struct {
	cache *lru.Cache
}

func NewLRUStore[K comparable, V any](size int) (*LRUStore[K, V], error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("new lru store: %w", err)
	}
	return &LRUStore[K, V]{cache: c}, nil
}

func (s *LRUStore[K, V]) Put(k K, v V) error {
	s.cache.Add(k, v)
	return nil
}

func (s *LRUStore[K, V]) Get(k K) (V, error) {
	var empty V
	v, ok := s.cache.Get(k)
	if !ok {
		return empty, fmt.Errorf("key %v does not exist in store", k)
	}
	return v.(V), nil
}

func (s *LRUStore[K, V]) Len() int {
	return s.cache.Len()
}
