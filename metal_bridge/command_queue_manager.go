package metal_bridge

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// OperationID represents a unique identifier for GPU operations
type OperationID uint64

// DefaultCompletedHistory is how many finished operations a
// CommandBufferManager remembers for WaitForOperation and as dependencies.
const DefaultCompletedHistory = 1024

// ErrManagerClosed is returned for operations queued on, or still waiting
// in, a CommandBufferManager that has been shut down.
var ErrManagerClosed = errors.New("metal_bridge: command buffer manager shut down")

// CommandBufferManager runs GPU operations on one command queue, each in its
// own command buffer, starting an operation only after every operation it
// depends on has completed. Operations execute in order on a single worker
// goroutine.
type CommandBufferManager struct {
	device       *Device
	commandQueue *CommandQueue

	nextOpID     atomic.Uint64
	pendingOps   map[OperationID]*PendingOperation
	completedOps map[OperationID]error
	completed    []OperationID // completedOps keys, oldest first
	history      int
	ready        []*PendingOperation

	mutex    sync.Mutex
	wake     chan struct{}
	shutdown chan struct{}
	stopped  chan struct{}
	closed   bool

	operationsQueued   atomic.Int64
	operationsExecuted atomic.Int64
}

// PendingOperation represents an operation waiting to be executed
type PendingOperation struct {
	ID           OperationID
	Dependencies []OperationID

	// Execute encodes the operation into cb. The manager commits cb and
	// waits for it.
	Execute    func(cb *CommandBuffer) error
	Cleanup    func() error // called with the manager locked; must not call back into it
	OnComplete func(error)

	// Buffers are retained while the operation is queued or running.
	// TempBuffers are owned by the operation and released when it completes.
	InputBuffers  []*Buffer
	OutputBuffers []*Buffer
	TempBuffers   []*Buffer

	held      []*Buffer
	waitingOn []OperationID
	depErr    error
	isReady   bool
	done    chan struct{}
	err     error
}

// NewCommandBufferManager creates a manager that keeps its own references to
// device and commandQueue.
func NewCommandBufferManager(device *Device, commandQueue *CommandQueue) *CommandBufferManager {
	manager := &CommandBufferManager{
		device:       Clone(device),
		commandQueue: Clone(commandQueue),
		pendingOps:   make(map[OperationID]*PendingOperation),
		completedOps: make(map[OperationID]error),
		history:      DefaultCompletedHistory,
		wake:         make(chan struct{}, 1),
		shutdown:     make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	go manager.processOperations()
	return manager
}

// GenerateOperationID creates a unique operation ID
func (m *CommandBufferManager) GenerateOperationID() OperationID {
	return OperationID(m.nextOpID.Add(1))
}

// SetCompletedHistory bounds how many finished operations m remembers. Older
// results are forgotten; waiting on or depending on them fails as if the
// operation never existed. n is clamped to at least 1.
func (m *CommandBufferManager) SetCompletedHistory(n int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.history = max(n, 1)
	m.evictLocked()
}

// QueueOperation adds an operation to the queue with dependency tracking.
// Every dependency must already be queued or completed.
func (m *CommandBufferManager) QueueOperation(op *PendingOperation) error {
	if op == nil || op.Execute == nil {
		return fmt.Errorf("operation has nothing to execute")
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	if op.ID == 0 {
		op.ID = m.GenerateOperationID()
	}
	if _, dup := m.pendingOps[op.ID]; dup {
		return fmt.Errorf("operation %d is already queued", op.ID)
	}
	if _, dup := m.completedOps[op.ID]; dup {
		return fmt.Errorf("operation %d has already run", op.ID)
	}
	for _, depID := range op.Dependencies {
		_, completed := m.completedOps[depID]
		_, pending := m.pendingOps[depID]
		if !completed && !pending {
			return fmt.Errorf("dependency operation %d does not exist", depID)
		}
	}

	op.done = make(chan struct{})
	op.isReady = false
	op.depErr = nil
	op.waitingOn = slices.Clone(op.Dependencies)
	op.held = op.held[:0]
	for _, group := range [][]*Buffer{op.InputBuffers, op.OutputBuffers} {
		for _, buf := range group {
			if c := Clone(buf); c != nil {
				op.held = append(op.held, c)
			}
		}
	}
	m.pendingOps[op.ID] = op
	m.operationsQueued.Add(1)
	logger().Debug("queued GPU operation", "id", op.ID, "dependencies", op.Dependencies)

	m.promoteReadyLocked()
	return nil
}

// dependencyStateLocked drops op's finished dependencies from its waiting
// list, so their results may later be evicted, and reports whether none
// remain along with the first dependency error seen.
func (m *CommandBufferManager) dependencyStateLocked(op *PendingOperation) (bool, error) {
	op.waitingOn = slices.DeleteFunc(op.waitingOn, func(depID OperationID) bool {
		err, completed := m.completedOps[depID]
		if completed && err != nil && op.depErr == nil {
			op.depErr = fmt.Errorf("dependency operation %d failed: %w", depID, err)
		}
		return completed
	})
	if op.depErr != nil {
		return true, op.depErr
	}
	return len(op.waitingOn) == 0, nil
}

// promoteReadyLocked moves operations whose dependencies have finished onto
// the ready list in ID order, failing those whose dependencies failed.
func (m *CommandBufferManager) promoteReadyLocked() {
	for {
		failed := false
		var ready []*PendingOperation
		for _, op := range m.pendingOps {
			if op.isReady {
				continue
			}
			finished, depErr := m.dependencyStateLocked(op)
			if !finished {
				continue
			}
			if depErr != nil {
				m.completeLocked(op, depErr)
				failed = true
				continue
			}
			op.isReady = true
			ready = append(ready, op)
		}
		slices.SortFunc(ready, func(a, b *PendingOperation) int { return cmp.Compare(a.ID, b.ID) })
		m.ready = append(m.ready, ready...)
		if !failed {
			break
		}
	}
	m.evictLocked()
	if len(m.ready) > 0 {
		select {
		case m.wake <- struct{}{}:
		default:
		}
	}
}

// processOperations is the worker goroutine.
func (m *CommandBufferManager) processOperations() {
	defer close(m.stopped)
	for {
		select {
		case <-m.shutdown:
			return
		default:
		}

		m.mutex.Lock()
		var op *PendingOperation
		if len(m.ready) > 0 {
			op = m.ready[0]
			m.ready = m.ready[1:]
		}
		m.mutex.Unlock()

		if op != nil {
			err := m.executeOperation(op)
			m.mutex.Lock()
			m.completeLocked(op, err)
			m.promoteReadyLocked()
			m.mutex.Unlock()
			continue
		}

		select {
		case <-m.wake:
		case <-m.shutdown:
			return
		}
	}
}

// executeOperation encodes op into a fresh command buffer and runs it to
// completion.
func (m *CommandBufferManager) executeOperation(op *PendingOperation) error {
	cb, err := m.commandQueue.CommandBuffer()
	if err != nil {
		return err
	}
	defer cb.Release()
	cb.SetLabel(fmt.Sprintf("operation %d", op.ID))

	if err := op.Execute(cb); err != nil {
		return err
	}
	cb.Commit()
	cb.WaitUntilCompleted()
	if status := cb.Status(); status == CommandBufferStatusError {
		if err := cb.Error(); err != nil {
			return err
		}
		return fmt.Errorf("command buffer for operation %d failed", op.ID)
	}
	m.operationsExecuted.Add(1)
	return nil
}

// completeLocked records op's result, releases its buffers and wakes its
// waiters.
func (m *CommandBufferManager) completeLocked(op *PendingOperation, err error) {
	op.err = err
	m.completedOps[op.ID] = err
	m.completed = append(m.completed, op.ID)
	delete(m.pendingOps, op.ID)

	if op.Cleanup != nil {
		if cleanupErr := op.Cleanup(); cleanupErr != nil {
			logger().Warn("cleanup error for GPU operation", "id", op.ID, "error", cleanupErr)
		}
	}
	for _, buf := range op.held {
		buf.Release()
	}
	op.held = nil
	for _, buf := range op.TempBuffers {
		buf.Release()
	}
	if err != nil {
		logger().Warn("GPU operation failed", "id", op.ID, "error", err)
	}
	close(op.done)
	if op.OnComplete != nil {
		go op.OnComplete(err)
	}
}

// evictLocked forgets the oldest results beyond the history bound. Every
// pending operation has already dropped them from its waiting list.
func (m *CommandBufferManager) evictLocked() {
	excess := len(m.completed) - m.history
	if excess <= 0 {
		return
	}
	for _, id := range m.completed[:excess] {
		delete(m.completedOps, id)
	}
	m.completed = slices.Delete(m.completed, 0, excess)
}

// WaitForOperation blocks until a specific operation completes or ctx is
// done, and returns the operation's error.
func (m *CommandBufferManager) WaitForOperation(ctx context.Context, opID OperationID) error {
	m.mutex.Lock()
	if err, ok := m.completedOps[opID]; ok {
		m.mutex.Unlock()
		return err
	}
	op, ok := m.pendingOps[opID]
	m.mutex.Unlock()
	if !ok {
		return fmt.Errorf("operation %d does not exist", opID)
	}

	select {
	case <-op.done:
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return op.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetStats returns operation statistics for monitoring
func (m *CommandBufferManager) GetStats() (queued, executed int64, pending int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.operationsQueued.Load(), m.operationsExecuted.Load(), len(m.pendingOps)
}

// Shutdown stops the worker after the operation it is running, fails every
// operation still waiting with ErrManagerClosed, and releases the manager's
// references.
func (m *CommandBufferManager) Shutdown() {
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return
	}
	m.closed = true
	m.mutex.Unlock()

	close(m.shutdown)
	<-m.stopped

	m.mutex.Lock()
	m.ready = nil
	for _, op := range m.pendingOps {
		m.completeLocked(op, ErrManagerClosed)
	}
	m.evictLocked()
	m.mutex.Unlock()

	m.commandQueue.Release()
	m.device.Release()
}
