package journal

import "sync"

// Mock ...
type Mock struct {
	sync.Mutex
	FRecord  func(Session) error
	Sessions []Session
}

// Record ...
func (s *Mock) Record(ss Session) error {
	s.Lock()
	s.Sessions = append(s.Sessions, ss)
	s.Unlock()
	if s.FRecord != nil {
		return s.FRecord(ss)
	}
	return nil
}
