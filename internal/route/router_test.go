package route

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRouterNavigateNotifiesObservers(t *testing.T) {
	t.Parallel()

	r := NewRouter()
	var changes []Change
	unsubscribe := r.Subscribe(func(c Change) { changes = append(changes, c) })

	r.Mount("/")
	change := r.Navigate("geek/games")

	require.Equal(t, Route{Path: Geek, Slug: "games"}, change.Route)
	require.Equal(t, "/geek/games", change.URL)
	require.True(t, change.ResetScroll)
	require.Equal(t, TriggerNavigate, change.Trigger)
	require.Equal(t, change.Route, r.Current())
	require.Len(t, changes, 2)
	require.Equal(t, TriggerMount, changes[0].Trigger)

	unsubscribe()
	r.Navigate("about")
	require.Len(t, changes, 2)
}

func TestRouterBackAndForward(t *testing.T) {
	t.Parallel()

	r := NewRouter()
	r.Mount("/#/essays")
	r.Navigate("hello-world")
	r.Navigate("library/media")

	change, ok := r.Back()
	require.True(t, ok)
	require.Equal(t, Route{Path: Post, Slug: "hello-world"}, change.Route)
	require.Equal(t, TriggerBack, change.Trigger)

	change, ok = r.Back()
	require.True(t, ok)
	require.Equal(t, Route{Path: Essays}, change.Route)
	require.Equal(t, "/essays", change.URL)

	_, ok = r.Back()
	require.False(t, ok)

	change, ok = r.Forward()
	require.True(t, ok)
	require.Equal(t, Route{Path: Post, Slug: "hello-world"}, change.Route)

	// navigating discards forward entries
	r.Navigate("about")
	_, ok = r.Forward()
	require.False(t, ok)
}

func TestRouterRestoreAndNotFound(t *testing.T) {
	t.Parallel()

	r := NewRouter()
	r.Mount("/about")
	change := r.Restore("/does-not-exist")
	require.Equal(t, Route{Path: NotFound}, change.Route)
	require.Equal(t, TriggerRestore, change.Trigger)
	require.True(t, change.ResetScroll)

	change = r.Restore("/about")
	require.Equal(t, Route{Path: About}, change.Route)
	_, ok := r.Forward()
	require.True(t, ok)
}
