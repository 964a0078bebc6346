package usergrid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Static errors for err113 compliance.
var (
	ErrTransactionFailed = errors.New("transaction failed")
)

const defaultBatchConcurrency = 5

// Doer sends a request and parses its response.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Request  *Request
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Response *Response
	Error    error
	Duration time.Duration
}

// BatchExecutor runs independent requests concurrently.
type BatchExecutor struct {
	client      Doer
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Doer, concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	return &BatchExecutor{
		client:      client,
		concurrency: concurrency,
		timeout:     30 * time.Second,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations. Results are in operation order;
// failed operations do not stop the others.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.concurrency)

	for index, operation := range operations {
		group.Go(func() error {
			opCtx, cancel := context.WithTimeout(groupCtx, b.timeout)
			defer cancel()

			start := time.Now()
			result := BatchResult{ID: operation.ID}

			resp, err := b.client.Do(opCtx, operation.Request)
			result.Response = resp
			result.Error = err
			result.Success = err == nil && resp != nil && resp.OK()
			result.Duration = time.Since(start)
			results[index] = result

			if operation.Callback != nil {
				operation.Callback(&result)
			}

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return results, fmt.Errorf("batch execution: %w", err)
	}

	return results, nil
}

// BatchBuilder helps build batch operations against one application.
type BatchBuilder struct {
	clientAppURL string
	operations   []BatchOperation
}

// NewBatchBuilder creates a builder for requests under clientAppURL.
func NewBatchBuilder(clientAppURL string) *BatchBuilder {
	return &BatchBuilder{clientAppURL: clientAppURL}
}

// AddGet adds a GET of one entity.
func (b *BatchBuilder) AddGet(id, entityType, uuidOrName string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:      id,
		Request: NewRequest(http.MethodGet, b.clientAppURL, WithPaths(entityType, uuidOrName)),
	})
}

// AddPost adds a POST creating one entity.
func (b *BatchBuilder) AddPost(id, entityType string, body Body) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:      id,
		Request: NewRequest(http.MethodPost, b.clientAppURL, WithPaths(entityType), WithJSONBody(body)),
	})
}

// AddPut adds a PUT updating one entity.
func (b *BatchBuilder) AddPut(id, entityType, uuidOrName string, body Body) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:      id,
		Request: NewRequest(http.MethodPut, b.clientAppURL, WithPaths(entityType, uuidOrName), WithJSONBody(body)),
	})
}

// AddDelete adds a DELETE of one entity.
func (b *BatchBuilder) AddDelete(id, entityType, uuidOrName string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID:      id,
		Request: NewRequest(http.MethodDelete, b.clientAppURL, WithPaths(entityType, uuidOrName)),
	})
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// BatchTransaction runs operations and, when any fails, deletes the
// entities the successful POSTs created.
type BatchTransaction struct {
	operations []BatchOperation
	executor   *BatchExecutor
	rollback   bool
}

// NewBatchTransaction creates a new batch transaction.
func NewBatchTransaction(executor *BatchExecutor) *BatchTransaction {
	return &BatchTransaction{
		executor: executor,
		rollback: true,
	}
}

// Add adds an operation to the transaction.
func (t *BatchTransaction) Add(operation BatchOperation) *BatchTransaction {
	t.operations = append(t.operations, operation)

	return t
}

// SetRollback sets whether to rollback on failure.
func (t *BatchTransaction) SetRollback(rollback bool) *BatchTransaction {
	t.rollback = rollback

	return t
}

// Execute executes the transaction.
func (t *BatchTransaction) Execute(ctx context.Context) ([]BatchResult, error) {
	results, err := t.executor.Execute(ctx, t.operations)
	if err != nil {
		return results, err
	}

	var failedOps []string

	for _, result := range results {
		if !result.Success {
			failedOps = append(failedOps, result.ID)
		}
	}

	if len(failedOps) == 0 {
		return results, nil
	}

	if t.rollback {
		t.performRollback(ctx, results)
	}

	return results, fmt.Errorf("%w, %d operations failed: %v", ErrTransactionFailed, len(failedOps), failedOps)
}

// performRollback deletes entities created by successful POSTs. Updates
// and deletes cannot be undone without the prior state and are left alone.
func (t *BatchTransaction) performRollback(ctx context.Context, results []BatchResult) {
	var rollbackOps []BatchOperation

	for i, result := range results {
		original := t.operations[i].Request
		if !result.Success || original.Method() != http.MethodPost || result.Response == nil {
			continue
		}

		for _, created := range result.Response.Entities {
			if created.UUID() == "" {
				continue
			}

			rollbackOps = append(rollbackOps, BatchOperation{
				ID: "rollback_" + result.ID,
				Request: NewRequest(http.MethodDelete, original.BaseURL(),
					WithPaths(created.Type(), created.UUID()),
					WithHeaders(original.Headers())),
			})
		}
	}

	if len(rollbackOps) > 0 {
		_, _ = t.executor.Execute(ctx, rollbackOps)
	}
}
