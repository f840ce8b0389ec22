package session

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"writeflow/internal/pipeline"
)

// defaultCapacity bounds how many runs are kept. Evicted runs keep executing
// but can no longer be watched.
const defaultCapacity = 128

// Store tracks in-flight and recently finished generation runs by ID.
type Store struct {
	runs *lru.Cache[string, *pipeline.Run]
}

func NewStore() *Store {
	cache, err := lru.New[string, *pipeline.Run](defaultCapacity)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Store{runs: cache}
}

func (s *Store) Put(run *pipeline.Run) {
	s.runs.Add(run.ID, run)
}

func (s *Store) Get(id string) (*pipeline.Run, bool) {
	return s.runs.Get(id)
}

func (s *Store) Remove(id string) {
	s.runs.Remove(id)
}

func (s *Store) Len() int {
	return s.runs.Len()
}
