package util

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	ulidOnce   sync.Once
	ulidStream chan ulid.ULID
)

// startULIDStream spawns the generator goroutine feeding ulidStream;
// a single monotonic entropy source keeps ids sortable within the
// lifetime of the process
func startULIDStream() {
	ulidStream = make(chan ulid.ULID, 100)

	go func() {
		t := time.Now()
		entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
		for {
			ulidStream <- ulid.MustNew(ulid.Timestamp(t), entropy)
		}
	}()
}

// NewULID returns the next generated ulid.ULID
func NewULID() ulid.ULID {
	ulidOnce.Do(startULIDStream)

	return <-ulidStream
}
