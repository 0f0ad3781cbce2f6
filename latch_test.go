package rendezvous

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLatchBasic(t *testing.T) {
	l := NewLatch(1)

	start := time.Now()
	time.AfterFunc(100*time.Millisecond, func() {
		l.CountDown()
	})

	l.Wait()
	dur := time.Since(start)
	if dur < 100*time.Millisecond {
		t.Errorf("Wait returned too early: %v", dur)
	}
}

func TestLatch_ThreeParticipants(t *testing.T) {
	l := NewLatch(3)

	released := make(chan struct{})
	go func() {
		l.Wait()
		close(released)
	}()

	for i := range 3 {
		select {
		case <-released:
			t.Fatalf("Wait returned after %d of 3 count-downs", i)
		case <-time.After(20 * time.Millisecond):
		}
		if c := l.Count(); c != 3-i {
			t.Fatalf("Count = %d, want %d", c, 3-i)
		}
		l.CountDown()
	}

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the third count-down")
	}

	// A fourth count-down is a no-op.
	l.CountDown()
	if c := l.Count(); c != 0 {
		t.Fatalf("Count after over-count-down = %d, want 0", c)
	}
	l.Wait()

	// ...and does not disturb a fresh latch.
	fresh := NewLatch(3)
	if fresh.TryWait() {
		t.Fatal("fresh latch released early")
	}
	if c := fresh.Count(); c != 3 {
		t.Fatalf("fresh Count = %d, want 3", c)
	}
}

func TestLatchBroadcast(t *testing.T) {
	l := NewLatch(1)
	var count int32
	var wg sync.WaitGroup
	n := 10

	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			l.Wait()
			atomic.AddInt32(&count, 1)
		}()
	}

	// Ensure they are waiting
	time.Sleep(50 * time.Millisecond)
	if c := atomic.LoadInt32(&count); c != 0 {
		t.Errorf("Waiters passed early: %d", c)
	}

	l.CountDown()
	wg.Wait()

	if c := atomic.LoadInt32(&count); c != int32(n) {
		t.Errorf("Not all waiters woke up: %d / %d", c, n)
	}
}

func TestLatch_Zero(t *testing.T) {
	l := NewLatch(0)
	if !l.TryWait() {
		t.Fatal("zero latch should be released")
	}

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Errorf("Wait blocked on a released latch")
	}
}

func TestLatch_ConcurrentCountDown(t *testing.T) {
	const n = 64
	l := NewLatch(n)
	var wg sync.WaitGroup
	wg.Add(n * 2)
	for range n {
		go func() {
			defer wg.Done()
			l.CountDown()
		}()
		go func() {
			defer wg.Done()
			l.Wait()
		}()
	}
	wg.Wait()
	if !l.TryWait() {
		t.Fatal("latch not released after n concurrent count-downs")
	}
}

func TestLatch_ArriveAndWait(t *testing.T) {
	const parties = 5
	l := NewLatch(parties)
	var arrived atomic.Int32
	var early atomic.Int32

	var wg sync.WaitGroup
	wg.Add(parties)
	for range parties {
		go func() {
			defer wg.Done()
			arrived.Add(1)
			l.ArriveAndWait()
			if arrived.Load() != parties {
				early.Add(1)
			}
		}()
	}
	wg.Wait()
	if e := early.Load(); e != 0 {
		t.Fatalf("%d parties passed before everyone arrived", e)
	}
}

func TestLatch_PanicNegative(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for negative count")
		}
	}()
	NewLatch(-1)
}
