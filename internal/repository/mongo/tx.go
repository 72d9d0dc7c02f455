package mongo

import (
	"context"

	"coachdesk/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// mongoTransactionRunner implements repository.TransactionRunner on a mongo
// client session. Requires the server to run as a replica set (standalone
// deployments do not support transactions).
type mongoTransactionRunner struct {
	client *mongo.Client
}

// NewMongoTransactionRunner creates a TransactionRunner bound to the client.
func NewMongoTransactionRunner(client *mongo.Client) repository.TransactionRunner {
	return &mongoTransactionRunner{client: client}
}

// WithTransaction runs fn inside a single multi-document transaction. All
// repository calls made with the session-bound context join it; any error
// from fn aborts the whole transaction.
func (r *mongoTransactionRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
