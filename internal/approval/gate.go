package approval

import (
	"sync"

	"taskvoice/internal/command"

	"github.com/rs/zerolog"
)

// State of the confirmation gate.
type State int

const (
	Idle State = iota
	AwaitingConfirmation
)

func (s State) String() string {
	if s == AwaitingConfirmation {
		return "awaiting_confirmation"
	}
	return "idle"
}

// Gate 持有至多一条待确认命令；命令只能被取走一次
// Gate holds at most one command awaiting confirmation; a held command can be taken exactly once
type Gate struct {
	mu      sync.Mutex
	pending *command.Pending
	log     zerolog.Logger
}

func NewGate(log zerolog.Logger) *Gate {
	return &Gate{log: log.With().Str("component", "approval").Logger()}
}

// Offer holds p, replacing any earlier command.
func (g *Gate) Offer(p command.Pending) {
	g.mu.Lock()
	replaced := g.pending != nil
	g.pending = p.Clone()
	g.mu.Unlock()
	g.log.Debug().Str("action", string(p.Action)).Bool("replaced", replaced).Msg("command awaiting confirmation")
}

// Take removes and returns the held command for execution.
func (g *Gate) Take() (command.Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return command.Pending{}, false
	}
	p := *g.pending
	g.pending = nil
	g.log.Debug().Str("action", string(p.Action)).Msg("command confirmed")
	return p, true
}

// Cancel drops the held command at the user's request.
func (g *Gate) Cancel() (command.Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return command.Pending{}, false
	}
	p := *g.pending
	g.pending = nil
	g.log.Debug().Str("action", string(p.Action)).Msg("command cancelled")
	return p, true
}

// Discard silently drops the held command when a new turn starts.
func (g *Gate) Discard() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return false
	}
	g.log.Debug().Str("action", string(g.pending.Action)).Msg("pending command superseded")
	g.pending = nil
	return true
}

func (g *Gate) Pending() (command.Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return command.Pending{}, false
	}
	return *g.pending, true
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Idle
	}
	return AwaitingConfirmation
}
