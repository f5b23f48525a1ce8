package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mmdatafocus/finance_backend/config"
)

func TestAcquireBaseLockSerializesPerBase(t *testing.T) {
	config.SetRedisClient(nil)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := AcquireBaseLock(context.Background(), "base-1")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected at most one holder at a time, got %d", maxInside)
	}
}

func TestAcquireBaseLockIndependentBases(t *testing.T) {
	config.SetRedisClient(nil)

	releaseA, err := AcquireBaseLock(context.Background(), "base-a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := AcquireBaseLock(context.Background(), "base-b")
		if err == nil {
			releaseB()
		}
		close(done)
	}()
	<-done
}
