package stats

// ResetDaily clears the per-day biggest-hit map. The server command calls
// it on a timer so old dates do not accumulate.
func (s *Store) ResetDaily() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.dailyMax {
		delete(s.dailyMax, k)
	}
}
