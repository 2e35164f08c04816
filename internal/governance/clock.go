package governance

import "time"

// SystemClock reads the wall clock in unix seconds.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }
