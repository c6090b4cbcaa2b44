package session

import "sync"

// ResultStore keeps the last-computed output text per pipeline stage for
// one session. Single-horse evaluation results carry an extra entrant key
// so bundles for different entrants never overwrite one another.
//
// A re-run must call ClearPipeline / ClearEntrant before its first
// SetStage: new results never populate over stale ones. SetStage is called
// per completed stage, so an interrupted run still leaves the finished
// stages readable.
type ResultStore struct {
	mu        sync.Mutex
	pipelines map[string]map[string]string
	entrants  map[int]map[string]string
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		pipelines: make(map[string]map[string]string),
		entrants:  make(map[int]map[string]string),
	}
}

func (s *ResultStore) GetStage(pipeline, stage string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.pipelines[pipeline][stage]
	return text, ok
}

func (s *ResultStore) SetStage(pipeline, stage, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipelines[pipeline] == nil {
		s.pipelines[pipeline] = make(map[string]string)
	}
	s.pipelines[pipeline][stage] = text
}

func (s *ResultStore) ClearPipeline(pipeline string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pipelines, pipeline)
}

func (s *ResultStore) GetEntrantStage(number int, stage string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.entrants[number][stage]
	return text, ok
}

func (s *ResultStore) SetEntrantStage(number int, stage, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entrants[number] == nil {
		s.entrants[number] = make(map[string]string)
	}
	s.entrants[number][stage] = text
}

func (s *ResultStore) ClearEntrant(number int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entrants, number)
}

// HasEntrant reports whether any stage has been computed for the entrant,
// so the UI can tell "never run" apart from "ran with an empty result".
func (s *ResultStore) HasEntrant(number int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entrants[number]) > 0
}

func (s *ResultStore) HasPipeline(pipeline string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pipelines[pipeline]) > 0
}
