package nexstar

import "context"

// Transport is the half-duplex wire boundary the codec sends framed
// requests over and reads framed responses from. A single in-flight
// request at a time: both implementations serialize Exchange calls with
// their own lock; the Celestron driver holds no lock across an exchange.
//
// Two implementations exist: a real serial port (pkg/nexstarserial) and a
// deterministic in-memory simulator (pkg/nexstarsim) used by tests and the
// --conform CLI flag.
type Transport interface {
	// Exchange writes req in full, then reads until exactly respLen bytes
	// have been accumulated or a read returns zero bytes (treated as EOF).
	// It returns the bytes actually read and an error on any I/O failure;
	// the codec maps a short read or I/O error to invalid_operation.
	Exchange(ctx context.Context, req []byte, respLen int) ([]byte, error)

	// Close releases the transport's underlying resources.
	Close() error
}
