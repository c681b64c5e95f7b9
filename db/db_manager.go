package db

import (
	"context"
	"errors"
	"log"

	"goblog/models"
)

// ErrManagerStopped is returned when an operation is submitted after Stop
var ErrManagerStopped = errors.New("database manager stopped")

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager funnels conflicting writes through a single worker so SQLite
// never sees two concurrent mutations
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
	}

	// Start the worker goroutine
	go m.worker()
	log.Println("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			err := op.Execute()
			op.Result <- err
		case op := <-m.resultOpQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation executes a database operation on the worker.
// Returns ErrManagerStopped once Stop has been called so a shutdown-order
// mistake fails loudly instead of blocking forever.
func (m *DBManager) ExecuteOperation(execute func() error) error {
	select {
	case <-m.stopping:
		return ErrManagerStopped
	default:
	}

	resultChan := make(chan error, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return ErrManagerStopped
	}

	select {
	case err := <-resultChan:
		return err
	case <-m.stopping:
		return ErrManagerStopped
	}
}

// ExecuteOperationWithResult executes a database operation that returns a result
func (m *DBManager) ExecuteOperationWithResult(execute func() (interface{}, error)) (interface{}, error) {
	select {
	case <-m.stopping:
		return nil, ErrManagerStopped
	default:
	}

	resultChan := make(chan OperationResult, 1)
	select {
	case m.resultOpQueue <- OperationWithResult{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return nil, ErrManagerStopped
	}

	select {
	case result := <-resultChan:
		return result.Data, result.Error
	case <-m.stopping:
		return nil, ErrManagerStopped
	}
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// Methods for specific repository operations

// CreateUser serializes access to user creation
func (m *DBManager) CreateUser(repo UserRepository, ctx context.Context, user *models.User) (*models.User, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// CreatePost serializes access to post creation
func (m *DBManager) CreatePost(repo PostRepository, ctx context.Context, post *models.Post) (*models.Post, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Post), nil
}

// UpdatePost serializes access to owner-checked post updates
func (m *DBManager) UpdatePost(repo PostRepository, ctx context.Context, id, ownerID int, title, content string) (*models.Post, error) {
	result, err := m.ExecuteOperationWithResult(func() (interface{}, error) {
		return repo.UpdateOwned(ctx, id, ownerID, title, content)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Post), nil
}

// DeletePost serializes access to owner-checked post deletion
func (m *DBManager) DeletePost(repo PostRepository, ctx context.Context, id, ownerID int) error {
	return m.ExecuteOperation(func() error {
		return repo.DeleteOwned(ctx, id, ownerID)
	})
}
