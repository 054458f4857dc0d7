package layers

import (
	"github.com/glazework/glaze/pkg/host"
)

// Bridge fans host viewport events out to a stack. Pan/zoom changes
// become SetTransform calls, size changes become Resize calls, and
// host teardown destroys the stack. A bridge owns its subscriptions;
// Close releases them without touching the stack.
type Bridge struct {
	stack  *Stack
	unsubs []func()
	closed bool
}

// Attach connects h to stack and returns the bridge keeping them in
// sync. The stack immediately adopts the host's current size and
// transform so surfaces attached before the first event are correct.
func Attach(h host.Host, stack *Stack) *Bridge {
	br := &Bridge{stack: stack}

	stack.Resize(h.Size())
	stack.SetTransform(h.Viewport())

	br.unsubs = append(br.unsubs,
		h.OnViewport(stack.SetTransform),
		h.OnResize(stack.Resize),
		h.OnDestroy(func() {
			stack.Destroy()
			br.Close()
		}),
	)
	return br
}

// Stack returns the bridged stack.
func (br *Bridge) Stack() *Stack { return br.stack }

// Close detaches the bridge from the host. The stack stays alive;
// callers that want it gone call Destroy themselves. Closing twice is
// a no-op.
func (br *Bridge) Close() {
	if br.closed {
		return
	}
	br.closed = true
	for _, unsub := range br.unsubs {
		unsub()
	}
	br.unsubs = nil
}
