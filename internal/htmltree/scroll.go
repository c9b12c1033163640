package htmltree

// Parsed markup has no layout, so scroll metrics are plain fields that a
// host (or a test) fills in with SetScrollMetrics.

// ScrollTop returns the scroll offset.
func (e *Element) ScrollTop() float64 {
	e.scrollMu.Lock()
	defer e.scrollMu.Unlock()
	return e.scrollTop
}

// ScrollHeight returns the content height.
func (e *Element) ScrollHeight() float64 {
	e.scrollMu.Lock()
	defer e.scrollMu.Unlock()
	return e.scrollHeight
}

// ClientHeight returns the viewport height.
func (e *Element) ClientHeight() float64 {
	e.scrollMu.Lock()
	defer e.scrollMu.Unlock()
	return e.clientHeight
}

// SetScrollTop moves the scroll offset, clamped to the scrollable range once
// metrics are known.
func (e *Element) SetScrollTop(top float64) {
	e.scrollMu.Lock()
	defer e.scrollMu.Unlock()

	if top < 0 {
		top = 0
	}
	if e.scrollHeight > 0 {
		top = min(top, max(e.scrollHeight-e.clientHeight, 0))
	}
	e.scrollTop = top
}

// SetScrollMetrics records the content and viewport heights.
func (e *Element) SetScrollMetrics(scrollHeight, clientHeight float64) {
	e.scrollMu.Lock()
	defer e.scrollMu.Unlock()
	e.scrollHeight = scrollHeight
	e.clientHeight = clientHeight
}
