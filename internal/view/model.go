// Package view holds the presentation state of a single wallet portfolio: which address is
// connected, whether a fetch is in flight, and the tables and chart derived from the result.
// It performs no I/O; callers execute the Requests it hands out and feed results back.
package view

import (
	"strings"
)

// State is the lifecycle phase of the view.
type State int

const (
	StateDisconnected State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// NoTokensMessage is shown for a loaded portfolio without holdings.
const NoTokensMessage = "No tokens found for this address."

// Request describes one fetch the caller must perform. Its Generation must be passed back
// to Resolve or Fail.
type Request struct {
	Generation uint64
	Address    string
	Chain      string
}

// Model is the portfolio view state machine.
type Model struct {
	state      State
	address    string
	chain      string
	generation uint64
	tokens     []Token
	err        error
}

// NewModel returns a disconnected view for chain. An empty chain lets the server pick its default.
func NewModel(chain string) *Model {
	return &Model{state: StateDisconnected, chain: strings.TrimSpace(chain)}
}

func (m *Model) State() State       { return m.state }
func (m *Model) Address() string    { return m.address }
func (m *Model) Chain() string      { return m.chain }
func (m *Model) Generation() uint64 { return m.generation }
func (m *Model) Err() error         { return m.err }
func (m *Model) Tokens() []Token    { return append([]Token(nil), m.tokens...) }
func (m *Model) IsConnected() bool  { return m.state != StateDisconnected }
func (m *Model) IsLoading() bool    { return m.state == StateLoading }

// Connect makes address the connected wallet. A new fetch is issued when the address changes,
// or when the previous fetch for the same address failed. An empty address disconnects.
func (m *Model) Connect(address string) (Request, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		m.Disconnect()
		return Request{}, false
	}
	if m.state != StateDisconnected && m.state != StateError && strings.EqualFold(address, m.address) {
		return Request{}, false
	}
	m.address = address
	return m.startFetch(), true
}

// SetChain switches the network. A connected view refetches immediately.
func (m *Model) SetChain(chain string) (Request, bool) {
	chain = strings.TrimSpace(chain)
	if chain == m.chain {
		return Request{}, false
	}
	m.chain = chain
	if m.state == StateDisconnected {
		return Request{}, false
	}
	return m.startFetch(), true
}

// Disconnect clears the address and tokens. Any response still in flight becomes stale.
func (m *Model) Disconnect() {
	m.generation++
	m.state = StateDisconnected
	m.address = ""
	m.tokens = nil
	m.err = nil
}

// Resolve applies a successful response. Responses from older generations are ignored.
func (m *Model) Resolve(generation uint64, tokens []Token) bool {
	if generation != m.generation || m.state != StateLoading {
		return false
	}
	m.tokens = append([]Token(nil), tokens...)
	m.err = nil
	m.state = StateLoaded
	return true
}

// Fail applies a failed response. Responses from older generations are ignored.
func (m *Model) Fail(generation uint64, err error) bool {
	if generation != m.generation || m.state != StateLoading {
		return false
	}
	m.tokens = nil
	m.err = err
	m.state = StateError
	return true
}

// Retry refetches the same address after a failure.
func (m *Model) Retry() (Request, bool) {
	if m.state != StateError {
		return Request{}, false
	}
	return m.startFetch(), true
}

func (m *Model) startFetch() Request {
	m.generation++
	m.state = StateLoading
	m.tokens = nil
	m.err = nil
	return Request{Generation: m.generation, Address: m.address, Chain: m.chain}
}
