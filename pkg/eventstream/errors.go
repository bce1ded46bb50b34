package eventstream

import "errors"

// ErrNilRecordedEvent indicates a nil event payload was provided to a publisher.
var ErrNilRecordedEvent = errors.New("nil recorded event")
