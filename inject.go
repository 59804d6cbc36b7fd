package tidepool

// syntheticPointerEvent represents a single injected pointer event in
// screen coordinates.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

// InjectMove queues a hover move to (x, y) with no button held.
// The event is consumed on the next Step.
func (s *Scene) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectPress queues a left-button press at (x, y).
func (s *Scene) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		x: x, y: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a left-button release at (x, y).
func (s *Scene) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		x: x, y: y,
		button: MouseButtonLeft,
	})
}

// InjectClick queues a press followed by a release at the same coordinates.
// Consumes two steps.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDoubleClick queues two clicks at the same coordinates. Consumes
// four steps, well inside the double-click window at normal tick rates.
func (s *Scene) InjectDoubleClick(x, y float64) {
	s.InjectClick(x, y)
	s.InjectClick(x, y)
}

// PendingInjections returns the number of queued synthetic events.
func (s *Scene) PendingInjections() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through processPointer. Returns true if an event was consumed.
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	s.processPointer(evt.x, evt.y, evt.pressed, evt.button)
	return true
}
