// Package worker implements mining and periodic conflict resolution for
// the ledger.
package worker

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// ErrShutdown is returned for mining requests made after a shutdown.
var ErrShutdown = errors.New("worker is shutting down")

// defaultResolveInterval represents the interval of asking peers for their
// chains and adopting a longer valid one.
const defaultResolveInterval = time.Minute

// =============================================================================

// Worker manages the POW workflows for the ledger.
type Worker struct {
	state           *state.State
	wg              sync.WaitGroup
	ticker          *time.Ticker
	resolveInterval time.Duration
	shut            chan struct{}
	mineRequests    chan mineRequest
	resolve         chan bool
	cancelMining    chan chan struct{}
	evHandler       state.EventHandler
}

// WithResolveInterval changes how often the worker resolves conflicts with
// its peers. A zero interval turns the periodic resolution off.
func WithResolveInterval(interval time.Duration) func(w *Worker) {
	return func(w *Worker) {
		w.resolveInterval = interval
	}
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler, options ...func(w *Worker)) *Worker {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	w := Worker{
		state:           st,
		resolveInterval: defaultResolveInterval,
		shut:            make(chan struct{}),
		mineRequests:    make(chan mineRequest),
		resolve:         make(chan bool, 1),
		cancelMining:    make(chan chan struct{}, 1),
		evHandler:       evHandler,
	}

	for _, option := range options {
		option(&w)
	}

	if w.resolveInterval > 0 {
		w.ticker = time.NewTicker(w.resolveInterval)
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
		w.resolveOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	// Catch up with the peers we were started with.
	if len(st.RetrieveKnownPeers()) > 0 {
		w.SignalResolve()
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	if w.ticker != nil {
		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()
	}

	w.evHandler("worker: shutdown: signal cancel mining")
	done := w.SignalCancelMining()
	done()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalResolve starts a conflict resolution. If there is already a signal
// pending in the channel, just return since a resolution will start.
func (w *Worker) SignalResolve() {
	select {
	case w.resolve <- true:
	default:
	}
	w.evHandler("worker: SignalResolve: resolve signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately. That G will not return from the function until done
// is called. This allows the caller to complete any state changes before a
// new mining operation takes place.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelMining <- wait:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	var once sync.Once
	return func() { once.Do(func() { close(wait) }) }
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
