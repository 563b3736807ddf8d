package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryLockerSerializesSameKey(t *testing.T) {
	locker := NewMemoryLocker()

	const workers = 16
	var wg sync.WaitGroup
	var held, maxHeld int
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), "provision:a@example.com")
			if err != nil {
				t.Errorf("Lock failed: %v", err)
				return
			}
			mu.Lock()
			held++
			if held > maxHeld {
				maxHeld = held
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			held--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxHeld != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxHeld)
	}
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()

	releaseA, err := locker.Lock(context.Background(), "provision:a@example.com")
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer releaseA()

	// A different key must not block.
	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Lock(context.Background(), "provision:b@example.com")
		if err == nil {
			releaseB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on an independent key blocked")
	}
}

func TestMemoryLockerContextCancellation(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Lock(context.Background(), "provision:a@example.com")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "provision:a@example.com"); err == nil {
		t.Fatal("second Lock succeeded while held, want context error")
	}

	release()

	// The key must become acquirable again once the holder releases.
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	release2, err := locker.Lock(ctx2, "provision:a@example.com")
	if err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
	release2()
}
