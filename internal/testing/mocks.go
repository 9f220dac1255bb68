package testing

import (
	"sync"

	"github.com/titguild/guildboard/internal/modules/pricing"
)

// MockGridFetcher serves a canned spreadsheet grid instead of hitting the
// published sheet.
type MockGridFetcher struct {
	mu    sync.Mutex
	Grid  [][]string
	Err   error
	calls int
}

// FetchGrid returns the canned grid or error.
func (m *MockGridFetcher) FetchGrid(sheetURL string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Grid, nil
}

// Calls reports how many fetches were made.
func (m *MockGridFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockQuoteFetcher serves a canned quote table instead of calling the
// exchange API.
type MockQuoteFetcher struct {
	mu     sync.Mutex
	Quotes pricing.QuoteTable
	Err    error
	calls  int
}

// FetchQuotes returns the canned quotes or error.
func (m *MockQuoteFetcher) FetchQuotes() (pricing.QuoteTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return pricing.QuoteTable{}, m.Err
	}
	return m.Quotes, nil
}

// Calls reports how many fetches were made.
func (m *MockQuoteFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
