// Package ids issues the sortable identifiers used for request tracing and
// activity rows.
package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	genMu sync.Mutex
	gen   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a ULID string. Identifiers issued by one process sort in
// issue order, which keeps activity rows naturally ordered.
func New() string {
	genMu.Lock()
	defer genMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), gen).String()
}
