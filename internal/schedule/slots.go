package schedule

// occupiedWindow maps a treatment duration to the span, in minutes, during which
// other slots are unbookable. The banding builds cleanup time into the block:
// short treatments (45/60) hold 90 minutes, long ones (90) hold 120. This is a
// business rule, not duration+buffer arithmetic; a 45-minute service still holds
// the full 90-minute block.
func occupiedWindow(durationMinutes int) int {
	if durationMinutes == 90 {
		return 120
	}
	return 90
}

// BlockedSlots computes which grid slots fall inside the occupied window of an
// appointment starting at startTime. The start slot itself is always part of the
// result, even when it is not a grid member. A grid slot t is blocked iff
// start <= t <= start+window: the window end is itself blocked, so a 90-minute
// treatment at 14:00 holds both 14:00 and 16:00, while a slot one minute past
// the window stays free.
func (e *Engine) BlockedSlots(startTime, serviceID, serviceName string) map[string]struct{} {
	blocked := map[string]struct{}{startTime: {}}

	start, err := ParseClock(startTime)
	if err != nil {
		// Unparseable start times cannot be mapped onto the grid; the exact
		// slot string stays marked as taken.
		return blocked
	}

	window := occupiedWindow(e.catalog.ResolveDuration(serviceID, serviceName))
	end := start + window

	for i, t := range e.grid.minutes {
		if t >= start && t <= end {
			blocked[e.grid.labels[i]] = struct{}{}
		}
	}
	return blocked
}

func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
