package gallery

import "context"

// State of the load-more guard.
type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Guard lets at most one page request run at a time. Each request gets a
// token; a response is only accepted if its token is still current.
type Guard struct {
	state  State
	token  uint64
	cancel context.CancelFunc
}

// Begin moves the guard to Loading and returns a context for the request
// plus its token. ok is false if a request is already running.
func (g *Guard) Begin(parent context.Context) (ctx context.Context, token uint64, ok bool) {
	if g.state == Loading {
		return nil, 0, false
	}
	g.token++
	ctx, g.cancel = context.WithCancel(parent)
	g.state = Loading
	return ctx, g.token, true
}

// Finish accepts the response for token and returns the guard to Idle.
// Stale tokens are rejected and leave the guard untouched.
func (g *Guard) Finish(token uint64) bool {
	if g.state != Loading || token != g.token {
		return false
	}
	g.release()
	return true
}

// Reset abandons any running request. Its response will be rejected.
func (g *Guard) Reset() {
	g.release()
	g.token++
}

func (g *Guard) State() State { return g.state }

func (g *Guard) release() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.state = Idle
}
