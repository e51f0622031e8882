package route

import "sync"

// Trigger names the event that caused a route change.
type Trigger string

const (
	TriggerMount    Trigger = "mount"
	TriggerNavigate Trigger = "navigate"
	TriggerBack     Trigger = "back"
	TriggerForward  Trigger = "forward"
	TriggerRestore  Trigger = "restore"
)

// Change is delivered to observers after every resolution.
type Change struct {
	Route       Route
	URL         string
	Trigger     Trigger
	ResetScroll bool
}

// Observer receives route changes synchronously.
type Observer func(Change)

type subscription struct {
	id uint64
	fn Observer
}

// Router owns the current route and a history stack. It has exactly one state, the
// current route; every trigger resolves synchronously and notifies observers.
type Router struct {
	mu        sync.Mutex
	history   []string
	index     int
	current   Route
	observers []subscription
	nextID    uint64
}

// NewRouter returns a router positioned at the home route with an empty history.
func NewRouter() *Router {
	return &Router{index: -1}
}

// Subscribe registers an observer and returns a function that removes it.
func (r *Router) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.observers = append(r.observers, subscription{id: id, fn: fn})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, s := range r.observers {
			if s.id == id {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// Current returns the current route.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Mount performs the initial resolution. A legacy "#/..." URL is replaced in the
// history by its clean path, so the history never holds the hash form.
func (r *Router) Mount(rawURL string) Change {
	clean := canonicalURL(rawURL)
	r.mu.Lock()
	r.history = []string{clean}
	r.index = 0
	r.mu.Unlock()
	return r.resolve(clean, TriggerMount)
}

// Navigate converts dest with Destination, pushes the result onto the history and
// resolves it. Forward entries are discarded.
func (r *Router) Navigate(dest string) Change {
	target := Destination(dest)
	r.mu.Lock()
	if r.index+1 < len(r.history) {
		r.history = r.history[:r.index+1]
	}
	r.history = append(r.history, target)
	r.index = len(r.history) - 1
	r.mu.Unlock()
	return r.resolve(target, TriggerNavigate)
}

// Back moves one entry back in the history. It reports false at the start of history.
func (r *Router) Back() (Change, bool) {
	r.mu.Lock()
	if r.index <= 0 {
		r.mu.Unlock()
		return Change{}, false
	}
	r.index--
	target := r.history[r.index]
	r.mu.Unlock()
	return r.resolve(target, TriggerBack), true
}

// Forward moves one entry forward in the history. It reports false at the end of history.
func (r *Router) Forward() (Change, bool) {
	r.mu.Lock()
	if r.index < 0 || r.index+1 >= len(r.history) {
		r.mu.Unlock()
		return Change{}, false
	}
	r.index++
	target := r.history[r.index]
	r.mu.Unlock()
	return r.resolve(target, TriggerForward), true
}

// Restore resolves a URL supplied by the browser on a history pop (back or forward
// where the client already knows the target URL).
func (r *Router) Restore(rawURL string) Change {
	clean := canonicalURL(rawURL)
	r.mu.Lock()
	found := false
	for i, entry := range r.history {
		if entry == clean {
			r.index = i
			found = true
			break
		}
	}
	if !found {
		r.history = append(r.history, clean)
		r.index = len(r.history) - 1
	}
	r.mu.Unlock()
	return r.resolve(clean, TriggerRestore)
}

func (r *Router) resolve(rawURL string, trigger Trigger) Change {
	next := Resolve(rawURL)

	r.mu.Lock()
	r.current = next
	observers := make([]Observer, len(r.observers))
	for i, s := range r.observers {
		observers[i] = s.fn
	}
	r.mu.Unlock()

	change := Change{Route: next, URL: rawURL, Trigger: trigger, ResetScroll: true}
	for _, fn := range observers {
		fn(change)
	}
	return change
}

// canonicalURL drops a legacy fragment in favour of the path it carries.
func canonicalURL(rawURL string) string {
	if legacy, ok := LegacyPath(rawURL); ok {
		return legacy
	}
	if rawURL == "" {
		return "/"
	}
	return rawURL
}
