package location

// Source supplies locations to the router. Implementations wrap a concrete
// history backend (browser, hash fragment, in-memory); the router only
// depends on this contract.
//
// A source must deliver change notifications in the order the changes
// logically occur, and must notify for changes triggered through its own
// Push/Replace/Go methods as well as external ones.
type Source interface {
	// Current returns the present location. Never nil.
	Current() *Location

	// Listen registers a change listener and returns a function that
	// removes it. The listener is not called for the current location,
	// only for subsequent changes.
	Listen(func(*Location)) (unlisten func())

	// Push appends a new entry and makes it current.
	Push(*Location)

	// Replace swaps the current entry in place.
	Replace(*Location)

	// Go moves n entries through the history (negative is back).
	// Moving past either end is a no-op.
	Go(n int)
}
