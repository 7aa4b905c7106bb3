package services

func (s *Store) SessionLockCount() int {
	s.reserveMu.Lock()
	defer s.reserveMu.Unlock()
	return len(s.reserving)
}
