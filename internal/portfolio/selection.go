package portfolio

import (
	"encoding/json"
	"sort"
	"sync"
)

// Selection is the set of tickers picked into the portfolio.
//
// Tickers are opaque case-sensitive strings; the selection does not check them
// against any catalog. Every method takes the same lock, so Toggle is a single
// check-then-act step even when called from several goroutines.
// The zero value is an empty selection ready to use.
type Selection struct {
	mu      sync.RWMutex
	tickers map[string]struct{}
}

func NewSelection(tickers ...string) *Selection {
	s := &Selection{tickers: make(map[string]struct{}, len(tickers))}
	for _, t := range tickers {
		s.tickers[t] = struct{}{}
	}
	return s
}

// Add inserts ticker and reports whether the selection changed.
func (s *Selection) Add(ticker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.add(ticker)
}

// Remove deletes ticker and reports whether the selection changed.
func (s *Selection) Remove(ticker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ticker)
}

// Toggle removes ticker if present, otherwise adds it.
// It returns true when ticker is selected after the call.
func (s *Selection) Toggle(ticker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remove(ticker) {
		return false
	}
	return s.add(ticker)
}

func (s *Selection) Contains(ticker string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tickers[ticker]
	return ok
}

func (s *Selection) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tickers)
}

// SortedList returns a new lexicographically sorted slice of the selected tickers.
func (s *Selection) SortedList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]string, 0, len(s.tickers))
	for t := range s.tickers {
		res = append(res, t)
	}
	sort.Strings(res)

	return res
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.tickers)
}

func (s *Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.SortedList())
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var tickers []string
	if err := json.Unmarshal(data, &tickers); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickers = make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		s.tickers[t] = struct{}{}
	}

	return nil
}

func (s *Selection) add(ticker string) bool {
	if _, ok := s.tickers[ticker]; ok {
		return false
	}
	if s.tickers == nil {
		s.tickers = make(map[string]struct{})
	}
	s.tickers[ticker] = struct{}{}
	return true
}

func (s *Selection) remove(ticker string) bool {
	if _, ok := s.tickers[ticker]; !ok {
		return false
	}
	delete(s.tickers, ticker)
	return true
}
