package views

// ViewState is the lifecycle of a list view: Loading until every fetch
// from the mount has settled, then Loaded. A view only re-fetches when
// Load is called again; there is no polling.
type ViewState int

const (
	Loading ViewState = iota
	Loaded
)

func (s ViewState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return "unknown"
}
