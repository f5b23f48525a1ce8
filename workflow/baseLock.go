package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/mmdatafocus/finance_backend/utils"
)

const baseLockTTL = 2 * time.Minute

var (
	baseMutexMap = make(map[string]*sync.Mutex)
	globalMutex  = &sync.Mutex{}
)

func baseMutex(baseId string) *sync.Mutex {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	mutex, exists := baseMutexMap[baseId]
	if !exists {
		mutex = &sync.Mutex{}
		baseMutexMap[baseId] = mutex
	}
	return mutex
}

// AcquireBaseLock serializes processing per client base: in-process with a mutex and
// across instances with a redis lock when Redis is connected. Call release when done.
func AcquireBaseLock(ctx context.Context, baseId string) (release func(), err error) {
	mutex := baseMutex(baseId)
	mutex.Lock()

	lock, err := utils.ObtainLock(ctx, "workflow", baseId, baseLockTTL, "workflow", "AcquireBaseLock")
	if err != nil {
		mutex.Unlock()
		return nil, err
	}
	return func() {
		utils.ReleaseLock(context.Background(), lock)
		mutex.Unlock()
	}, nil
}
