package service

import "time"

// Clock supplies the current time. Injected so tests can pin timestamps;
// production wiring passes time.Now.
type Clock func() time.Time
