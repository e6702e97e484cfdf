package work

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Daskott/instantdoc/server/models"
	"github.com/pkg/errors"
)

const DEFAULT_CONCURRENCY = 2

var DefaultSleepBackoffsInSeconds = []int64{0, 1, 5, 10}

type WorkerPool struct {
	store       *models.Store
	handlers    map[string]Handler
	workers     []*worker
	reaper      *stuckJobsReaper
	concurrency int
	started     bool
	mu          sync.Mutex
}

func newWorkerPool(store *models.Store, concurrency int) *WorkerPool {
	if concurrency <= 0 {
		concurrency = DEFAULT_CONCURRENCY
	}

	wp := WorkerPool{
		store:       store,
		handlers:    make(map[string]Handler),
		reaper:      newStuckJobsReaper(store),
		concurrency: concurrency,
	}

	for i := 0; i < concurrency; i++ {
		wp.workers = append(wp.workers, newWorker(store, DefaultSleepBackoffsInSeconds))
	}

	return &wp
}

// registerHandler binds a name to a job handler for all workers in pool
func (wp *WorkerPool) registerHandler(name string, handler Handler) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if _, ok := wp.handlers[name]; ok {
		return ErrDuplicateHandler
	}

	if wp.started {
		return fmt.Errorf("cannot register handler %q after the pool has started", name)
	}

	wp.handlers[name] = handler
	for _, worker := range wp.workers {
		err := worker.registerHandler(name, handler)

		// Only fail on errors that are unexpected i.e !ErrDuplicateHandler
		if err != nil && !errors.Is(err, ErrDuplicateHandler) {
			return err
		}
	}
	return nil
}

// enqueue adds a job to the queue (to be executed) by creating a DB record based on 'JobParams' provided
func (wp *WorkerPool) enqueue(job JobParams) error {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return fmt.Errorf("both a name & handler is required for a job")
	}

	argsAsJson, err := json.Marshal(job.Args)
	if err != nil {
		return errors.Wrap(err, "enqueue")
	}

	return wp.store.CreateJob(job.Name, job.Handler, string(argsAsJson), job.Unique)
}

// start starts all workers in pool i.e the workers can start processing jobs
func (wp *WorkerPool) start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		worker.start()
	}
	wp.reaper.start()
}

// stop stops all workers in pool i.e jobs will stop being processed
func (wp *WorkerPool) stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.started {
		return
	}

	wg := sync.WaitGroup{}
	for _, w := range wp.workers {
		wg.Add(1)
		go func(w *worker) {
			w.stop()
			wg.Done()
		}(w)
	}
	wp.reaper.stop()
	wg.Wait()
	wp.started = false
}
