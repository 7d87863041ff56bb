package booking

import (
	"sync"
	"testing"
)

func TestLocker_SerializesSameRoom(t *testing.T) {
	t.Parallel()

	locker := NewLocker()
	const workers = 16
	const iterations = 100

	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := locker.Lock("r-1")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Fatalf("expected %d increments, got %d", workers*iterations, counter)
	}
}

func TestLocker_DifferentRoomsDoNotBlock(t *testing.T) {
	t.Parallel()

	locker := NewLocker()
	unlockA := locker.Lock("r-1")

	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock("r-2")
		unlockB()
		close(done)
	}()

	<-done
	unlockA()
}

func TestLocker_ReleasesEntries(t *testing.T) {
	t.Parallel()

	locker := NewLocker()
	unlock := locker.Lock("r-1")
	unlock()

	locker.mu.Lock()
	remaining := len(locker.locks)
	locker.mu.Unlock()

	if remaining != 0 {
		t.Fatalf("expected lock map to be empty, got %d entries", remaining)
	}
}
