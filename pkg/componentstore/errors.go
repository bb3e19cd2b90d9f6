package componentstore

import "errors"

// ErrDeadComponent is returned by WeakHandle.Upgrade when the slot it
// refers to has since been recycled for a different incarnation: the
// stored epoch no longer matches the slot's live epoch. It is the only
// fallible outcome the engine exposes; every other failure mode (a
// mismatched storage id, an out-of-range index) is a programmer error and
// surfaces as a debug-build assertion instead, per the package's error
// handling design.
var ErrDeadComponent = errors.New("componentstore: component is dead")

// errStorageIDExhausted is not returned (storage-id allocation has no
// fallible call site in the public API): its text is the message of the
// debug-build assertion raised when the process-wide storage id counter
// would wrap past its 8-bit lane. The exhaustion itself is also logged at
// Error level; in release builds the id then wraps.
var errStorageIDExhausted = errors.New("componentstore: storage id space exhausted (max 256 storages per process)")
