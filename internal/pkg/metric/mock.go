package metric

import "sync"

// Mock counts calls instead of exporting them.
type Mock struct {
	sync.Mutex
	Conn     map[string]int
	Transfer map[string]int
	Failures map[string]int
}

// NewMock ...
func NewMock() *Mock {
	s := &Mock{
		Conn:     make(map[string]int),
		Transfer: make(map[string]int),
		Failures: make(map[string]int),
	}
	return s
}

// ClientConnInc ...
func (s *Mock) ClientConnInc(role string) {
	s.Lock()
	defer s.Unlock()
	s.Conn[role]++
}

// ClientConnDec ...
func (s *Mock) ClientConnDec(role string) {
	s.Lock()
	defer s.Unlock()
	s.Conn[role]--
}

// TransferBytes ...
func (s *Mock) TransferBytes(role, direction string, n int) {
	s.Lock()
	defer s.Unlock()
	s.Transfer[role+"/"+direction] += n
}

// Failure ...
func (s *Mock) Failure(role, kind string) {
	s.Lock()
	defer s.Unlock()
	s.Failures[role+"/"+kind]++
}
