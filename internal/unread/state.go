package unread

import "sync"

// Counts is the five-tab badge record. The five counters are always
// published together; consumers never observe a partial update.
type Counts struct {
	Novedades int `json:"novedades"`
	Eventos   int `json:"eventos"`
	Mensajes  int `json:"mensajes"`
	Cambios   int `json:"cambios"`
	Boletines int `json:"boletines"`
}

// State is the shared, observable badge record for one user session.
// Only the Engine writes to it; tab bars, filter pills and the websocket
// push layer are read-only consumers.
type State struct {
	mu      sync.RWMutex
	current Counts
	subs    map[int]chan Counts
	nextID  int
}

func NewState() *State {
	return &State{
		subs: make(map[int]chan Counts),
	}
}

// Get returns the last published counts.
func (s *State) Get() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers a consumer. The channel holds the latest value
// only: a slow consumer sees the newest counts, not a backlog. The
// returned func unsubscribes.
func (s *State) Subscribe() (<-chan Counts, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Counts, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// publish commits a new record and fans it out. Package-private: the
// engine is the single writer.
func (s *State) publish(c Counts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = c
	for _, ch := range s.subs {
		// Replace a pending stale value instead of blocking
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c:
			default:
			}
		}
	}
}
