package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/infrastructure/persistence/abstractions"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Single-table layout.
//
//	document:  PK=<KIND>#<id>            SK=METADATA
//	           GSI1PK=<KIND>#OWNER#<owner> (or <KIND>#ALL)  GSI1SK=<created>#<id>
//	guard:     PK=UNIQUE#<KIND>#<naturalKey>  SK=UNIQUE  OwnerID=<id>
const (
	IndexName = "GSI1"

	metadataSK = "METADATA"
	guardSK    = "UNIQUE"

	attrPK         = "PK"
	attrSK         = "SK"
	attrGSI1PK     = "GSI1PK"
	attrGSI1SK     = "GSI1SK"
	attrEntityType = "EntityType"
	attrNaturalKey = "NaturalKey"
	attrOwnerID    = "OwnerID"

	// sortLayout keeps GSI1SK lexically ordered by time.
	sortLayout = "2006-01-02T15:04:05.000000000Z"
)

// API is the subset of the DynamoDB client the backend uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store keeps documents of one kind in the shared table.
type Store[E any] struct {
	client    API
	tableName string
	kind      abstractions.Kind[E]
	logger    *zap.Logger
}

// NewStore creates a store for kind in tableName.
func NewStore[E any](client API, tableName string, kind abstractions.Kind[E], logger *zap.Logger) *Store[E] {
	return &Store[E]{
		client:    client,
		tableName: tableName,
		kind:      kind,
		logger:    logger,
	}
}

// NewRepositories returns DynamoDB repositories for every kind.
func NewRepositories(client API, tableName string, logger *zap.Logger) *ports.Repositories {
	return abstractions.Repositories(abstractions.Stores{
		Users:      NewStore(client, tableName, abstractions.UserKind, logger),
		Patients:   NewStore(client, tableName, abstractions.PatientKind, logger),
		Caregivers: NewStore(client, tableName, abstractions.CaregiverKind, logger),
		Journals:   NewStore(client, tableName, abstractions.JournalKind, logger),
		Memories:   NewStore(client, tableName, abstractions.MemoryKind, logger),
		Calendar:   NewStore(client, tableName, abstractions.CalendarKind, logger),
		Flows:      NewStore(client, tableName, abstractions.FlowKind, logger),
		Interviews: NewStore(client, tableName, abstractions.InterviewKind, logger),
		Chats:      NewStore(client, tableName, abstractions.ChatKind, logger),
		Analyses:   NewStore(client, tableName, abstractions.AnalysisKind, logger),
		Media:      NewStore(client, tableName, abstractions.MediaKind, logger),
	})
}

func documentKey(kind, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: kind + "#" + id},
		attrSK: &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func guardKey(kind, naturalKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: "UNIQUE#" + kind + "#" + naturalKey},
		attrSK: &types.AttributeValueMemberS{Value: guardSK},
	}
}

func ownerPartition(kind, owner string) string {
	if owner == "" {
		return kind + "#ALL"
	}
	return kind + "#OWNER#" + owner
}

func sortKey(created time.Time, id string) string {
	return created.UTC().Format(sortLayout) + "#" + id
}

func (s *Store[E]) toItem(doc *E) (map[string]types.AttributeValue, string, error) {
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal %s: %w", s.kind.Name, err)
	}
	id := s.kind.ID(doc)
	for k, v := range documentKey(s.kind.Name, id) {
		item[k] = v
	}
	item[attrGSI1PK] = &types.AttributeValueMemberS{Value: ownerPartition(s.kind.Name, s.kind.OwnerOf(doc))}
	item[attrGSI1SK] = &types.AttributeValueMemberS{Value: sortKey(s.kind.CreatedAt(doc), id)}
	item[attrEntityType] = &types.AttributeValueMemberS{Value: s.kind.Name}

	key := s.kind.UniqueKey(doc)
	if key != "" {
		item[attrNaturalKey] = &types.AttributeValueMemberS{Value: key}
	}
	return item, key, nil
}

func (s *Store[E]) guardItem(naturalKey, id string) map[string]types.AttributeValue {
	item := guardKey(s.kind.Name, naturalKey)
	item[attrEntityType] = &types.AttributeValueMemberS{Value: guardSK}
	item[attrOwnerID] = &types.AttributeValueMemberS{Value: id}
	return item
}

// Create inserts doc and claims its natural key in one transaction.
func (s *Store[E]) Create(ctx context.Context, doc *E) error {
	item, key, err := s.toItem(doc)
	if err != nil {
		return pkgerrors.NewInternalError(err.Error())
	}

	notExists, err := expression.NewBuilder().WithCondition(expression.AttributeNotExists(expression.Name(attrPK))).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	if key == "" {
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(s.tableName),
			Item:                     item,
			ConditionExpression:      notExists.Condition(),
			ExpressionAttributeNames: notExists.Names(),
		})
		return s.writeError("create", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(s.tableName),
				Item:                     item,
				ConditionExpression:      notExists.Condition(),
				ExpressionAttributeNames: notExists.Names(),
			}},
			{Put: &types.Put{
				TableName:                aws.String(s.tableName),
				Item:                     s.guardItem(key, s.kind.ID(doc)),
				ConditionExpression:      notExists.Condition(),
				ExpressionAttributeNames: notExists.Names(),
			}},
		},
	})
	return s.writeError("create", err)
}

// Save upserts doc. When the natural key changes the new key is claimed and
// the old one released in the same transaction.
func (s *Store[E]) Save(ctx context.Context, doc *E) error {
	item, key, err := s.toItem(doc)
	if err != nil {
		return pkgerrors.NewInternalError(err.Error())
	}
	id := s.kind.ID(doc)

	oldKey := ""
	if s.kind.NaturalKey != nil {
		old, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:            aws.String(s.tableName),
			Key:                  documentKey(s.kind.Name, id),
			ProjectionExpression: aws.String(attrNaturalKey),
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("save", err)
		}
		if v, ok := old.Item[attrNaturalKey].(*types.AttributeValueMemberS); ok {
			oldKey = v.Value
		}
	}

	if key == oldKey {
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      item,
		})
		return s.writeError("save", err)
	}

	tx := []types.TransactWriteItem{{Put: &types.Put{
		TableName: aws.String(s.tableName),
		Item:      item,
	}}}
	if key != "" {
		claim, err := expression.NewBuilder().WithCondition(
			expression.AttributeNotExists(expression.Name(attrPK)).
				Or(expression.Name(attrOwnerID).Equal(expression.Value(id))),
		).Build()
		if err != nil {
			return fmt.Errorf("failed to build expression: %w", err)
		}
		tx = append(tx, types.TransactWriteItem{Put: &types.Put{
			TableName:                 aws.String(s.tableName),
			Item:                      s.guardItem(key, id),
			ConditionExpression:       claim.Condition(),
			ExpressionAttributeNames:  claim.Names(),
			ExpressionAttributeValues: claim.Values(),
		}})
	}
	if oldKey != "" {
		tx = append(tx, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(s.tableName),
			Key:       guardKey(s.kind.Name, oldKey),
		}})
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: tx})
	return s.writeError("save", err)
}

func (s *Store[E]) writeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	var canceled *types.TransactionCanceledException
	if errors.As(err, &ccf) || (errors.As(err, &canceled) && conditionFailed(canceled)) {
		return pkgerrors.NewConflictError("a matching " + s.kind.Name + " already exists").WithCode("DUPLICATE")
	}
	s.logger.Error("DynamoDB write failed",
		zap.String("entityType", s.kind.Name),
		zap.String("operation", op),
		zap.Error(err))
	return pkgerrors.NewDatabaseError(op, err)
}

func conditionFailed(e *types.TransactionCanceledException) bool {
	for _, reason := range e.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

// Get returns the document with id.
func (s *Store[E]) Get(ctx context.Context, id string) (*E, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       documentKey(s.kind.Name, id),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError(s.kind.Name)
	}

	doc := new(E)
	if err := attributevalue.UnmarshalMap(out.Item, doc); err != nil {
		return nil, pkgerrors.NewDatabaseError("get", err)
	}
	return doc, nil
}

// ListByOwner queries the owner partition of GSI1, newest first.
func (s *Store[E]) ListByOwner(ctx context.Context, owner string) ([]*E, error) {
	keyCond := expression.Key(attrGSI1PK).Equal(expression.Value(ownerPartition(s.kind.Name, owner)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})

	var docs []*E
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list", err)
		}
		docs = append(docs, s.parse(page.Items)...)
	}
	if docs == nil {
		docs = []*E{}
	}
	return docs, nil
}

// List returns every document of the kind, newest first. Kinds without an
// owner are read from their GSI1 partition, the rest by a filtered scan.
func (s *Store[E]) List(ctx context.Context) ([]*E, error) {
	if s.kind.Owner == nil {
		return s.ListByOwner(ctx, "")
	}

	filter := expression.Name(attrEntityType).Equal(expression.Value(s.kind.Name))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	docs := []*E{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list", err)
		}
		docs = append(docs, s.parse(page.Items)...)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return s.kind.CreatedAt(docs[i]).After(s.kind.CreatedAt(docs[j]))
	})
	return docs, nil
}

func (s *Store[E]) parse(items []map[string]types.AttributeValue) []*E {
	docs := make([]*E, 0, len(items))
	for _, item := range items {
		doc := new(E)
		if err := attributevalue.UnmarshalMap(item, doc); err != nil {
			s.logger.Warn("Failed to parse item", zap.String("entityType", s.kind.Name), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// Delete removes the document with id and releases its natural key.
func (s *Store[E]) Delete(ctx context.Context, id string) error {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       documentKey(s.kind.Name, id),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete", err)
	}
	if len(out.Item) == 0 {
		return pkgerrors.NewNotFoundError(s.kind.Name)
	}

	key, _ := out.Item[attrNaturalKey].(*types.AttributeValueMemberS)
	if key == nil || key.Value == "" {
		_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       documentKey(s.kind.Name, id),
		})
	} else {
		_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Delete: &types.Delete{TableName: aws.String(s.tableName), Key: documentKey(s.kind.Name, id)}},
				{Delete: &types.Delete{TableName: aws.String(s.tableName), Key: guardKey(s.kind.Name, key.Value)}},
			},
		})
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("delete", err)
	}

	s.logger.Debug("Entity deleted", zap.String("entityType", s.kind.Name), zap.String("entityID", id))
	return nil
}
