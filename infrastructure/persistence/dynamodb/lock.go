package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const lockSK = "LOCK"

// ErrLockHeld is returned when another process holds the lock.
var ErrLockHeld = errors.New("lock already held")

// lockRecord lives in the main table under PK LOCK#<name>. An expired record
// can be taken over.
type lockRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	LockID     string `dynamodbav:"LockID"`
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  string `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"`
}

// Locker serialises maintenance jobs across processes with conditional writes.
type Locker struct {
	client    API
	tableName string
	now       func() time.Time
	logger    *zap.Logger
}

// NewLocker creates a locker over tableName.
func NewLocker(client API, tableName string, logger *zap.Logger) *Locker {
	return &Locker{client: client, tableName: tableName, now: time.Now, logger: logger}
}

// Lock is a held lock. Release it when the job is done.
type Lock struct {
	locker    *Locker
	name      string
	id        string
	owner     string
	expiresAt time.Time
}

// Acquire takes the lock name for ttl. It fails with ErrLockHeld while an
// unexpired lock exists.
func (l *Locker) Acquire(ctx context.Context, name, owner string, ttl time.Duration) (*Lock, error) {
	now := l.now().UTC()
	expiresAt := now.Add(ttl)
	rec := lockRecord{
		PK:         "LOCK#" + name,
		SK:         lockSK,
		EntityType: lockSK,
		LockID:     uuid.NewString(),
		Owner:      owner,
		AcquiredAt: now.Format(time.RFC3339),
		ExpiresAt:  expiresAt.Format(time.RFC3339),
		TTL:        expiresAt.Unix(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name(attrPK)).
		Or(expression.Name("ExpiresAt").LessThan(expression.Value(now.Format(time.RFC3339))))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(l.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var failed *types.ConditionalCheckFailedException
		if errors.As(err, &failed) {
			return nil, fmt.Errorf("%w: %s", ErrLockHeld, name)
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	l.logger.Debug("Lock acquired",
		zap.String("lock", name),
		zap.String("owner", owner),
		zap.Duration("ttl", ttl))
	return &Lock{locker: l, name: name, id: rec.LockID, owner: owner, expiresAt: expiresAt}, nil
}

// Release deletes the lock if it is still ours.
func (lk *Lock) Release(ctx context.Context) error {
	cond := expression.Name("LockID").Equal(expression.Value(lk.id)).
		And(expression.Name("Owner").Equal(expression.Value(lk.owner)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = lk.locker.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(lk.locker.tableName),
		Key: map[string]types.AttributeValue{
			attrPK: &types.AttributeValueMemberS{Value: "LOCK#" + lk.name},
			attrSK: &types.AttributeValueMemberS{Value: lockSK},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var failed *types.ConditionalCheckFailedException
		if errors.As(err, &failed) {
			lk.locker.logger.Warn("Lock expired or taken over before release", zap.String("lock", lk.name))
			return nil
		}
		return fmt.Errorf("failed to release lock %s: %w", lk.name, err)
	}
	return nil
}

// Expired reports whether the lock has outlived its ttl.
func (lk *Lock) Expired() bool {
	return lk.locker.now().After(lk.expiresAt)
}

// WithLock runs fn while holding the lock name.
func (l *Locker) WithLock(ctx context.Context, name, owner string, ttl time.Duration, fn func(context.Context) error) error {
	lock, err := l.Acquire(ctx, name, owner, ttl)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			l.logger.Error("Failed to release lock", zap.String("lock", name), zap.Error(err))
		}
	}()
	return fn(ctx)
}
