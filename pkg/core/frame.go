package core

import "time"

// FrameRate is the fixed simulation rate in ticks per second.
const FrameRate = 30

// TickDuration is the duration of one simulation tick.
const TickDuration = time.Second / FrameRate

// Frame counts simulation ticks.
type Frame int32

// Duration converts a frame count to a duration on the tick grid.
func (f Frame) Duration() time.Duration {
	return time.Duration(f) * TickDuration
}

// FrameFromDuration truncates d to whole ticks.
func FrameFromDuration(d time.Duration) Frame {
	return Frame(d / TickDuration)
}

// Seconds converts a whole-second count to frames.
func Seconds(n int) Frame {
	return Frame(n * FrameRate)
}
