package renderer

import (
	"sync"
)

// FrameTask represents a frame rendering task for the worker pool
type FrameTask struct {
	Index int // Frame index
}

// FrameResult contains the result from rendering a frame
type FrameResult struct {
	Index int
	Stats RenderStats
	Error error
}

// FrameFunc renders and persists one frame
type FrameFunc func(index int) (RenderStats, error)

// WorkerPool manages a fixed set of workers pulling frames from a queue
type WorkerPool struct {
	taskQueue   chan FrameTask
	resultQueue chan FrameResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual frame tasks
type Worker struct {
	ID          int
	render      FrameFunc
	taskQueue   chan FrameTask
	resultQueue chan FrameResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// At most numWorkers tasks may be outstanding (submitted but not yet collected).
func NewWorkerPool(numWorkers int, render FrameFunc) *WorkerPool {
	numWorkers = max(numWorkers, 1)

	wp := &WorkerPool{
		taskQueue:   make(chan FrameTask, numWorkers),
		resultQueue: make(chan FrameResult, numWorkers),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			render:      render,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a frame task to the worker pool
func (wp *WorkerPool) SubmitTask(task FrameTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed frame result
func (wp *WorkerPool) GetResult() (FrameResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		stats, err := w.render(task.Index)
		w.resultQueue <- FrameResult{
			Index: task.Index,
			Stats: stats,
			Error: err,
		}
	}
}
