package services

// Load-more windowing: the grid shows a prefix of the filtered list and
// grows it in fixed increments.
const (
	InitialDisplayCount = 9
	LoadMoreIncrement   = 9
)

// WindowSlice returns the visible prefix of items for a display count and
// whether more items remain. Counts below the initial size are normalized
// up, which also covers window resets after a filter change.
func WindowSlice[T any](items []T, displayCount int) ([]T, bool) {
	if displayCount < InitialDisplayCount {
		displayCount = InitialDisplayCount
	}
	if displayCount >= len(items) {
		return items, false
	}
	return items[:displayCount], true
}

// NextDisplayCount advances the window by one load-more step.
func NextDisplayCount(displayCount int) int {
	if displayCount < InitialDisplayCount {
		displayCount = InitialDisplayCount
	}
	return displayCount + LoadMoreIncrement
}
