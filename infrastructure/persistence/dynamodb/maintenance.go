package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// CreateTable creates the single table with its GSI1 index and waits until
// it is active. An existing table is left alone.
func CreateTable(ctx context.Context, client API, tableName string, wait time.Duration, logger *zap.Logger) error {
	str := types.ScalarAttributeTypeS
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrPK), AttributeType: str},
			{AttributeName: aws.String(attrSK), AttributeType: str},
			{AttributeName: aws.String(attrGSI1PK), AttributeType: str},
			{AttributeName: aws.String(attrGSI1SK), AttributeType: str},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrPK), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrSK), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{{
			IndexName: aws.String(IndexName),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(attrGSI1PK), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(attrGSI1SK), KeyType: types.KeyTypeRange},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		}},
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			logger.Info("Table already exists", zap.String("table", tableName))
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	logger.Info("Waiting for table to become active", zap.String("table", tableName))
	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}, wait); err != nil {
		return fmt.Errorf("table %s did not become active: %w", tableName, err)
	}
	logger.Info("Table created", zap.String("table", tableName), zap.String("index", IndexName))
	return nil
}

// Ping checks that the table exists and is active.
func Ping(ctx context.Context, client API, tableName string) error {
	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)})
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}
	if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
		return fmt.Errorf("table %s is not active", tableName)
	}
	return nil
}

// DedupeKinds are the kinds whose duplicates Dedupe removes.
var DedupeKinds = []string{"USER", "JOURNAL", "MEMORY", "EVENT"}

// DedupeReport counts what Dedupe found per kind.
type DedupeReport struct {
	Scanned    map[string]int `json:"scanned"`
	Duplicates map[string]int `json:"duplicates"`
	Deleted    int            `json:"deleted"`
	DryRun     bool           `json:"dry_run"`
}

type dedupeItem struct {
	pk, gsi1sk, id string
}

// Dedupe scans documents of DedupeKinds, groups them by natural key and
// deletes every document except the oldest of each group. The uniqueness
// guard is pointed at the kept document.
func Dedupe(ctx context.Context, client API, tableName string, dryRun bool, logger *zap.Logger) (*DedupeReport, error) {
	values := make([]expression.OperandBuilder, 0, len(DedupeKinds))
	for _, k := range DedupeKinds {
		values = append(values, expression.Value(k))
	}
	filter := expression.Name(attrEntityType).In(values[0], values[1:]...).
		And(expression.AttributeExists(expression.Name(attrNaturalKey)))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	report := &DedupeReport{Scanned: map[string]int{}, Duplicates: map[string]int{}, DryRun: dryRun}
	groups := map[[2]string][]dedupeItem{}

	paginator := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{
		TableName:                 aws.String(tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", tableName, err)
		}
		for _, item := range page.Items {
			kind, key := stringAttr(item, attrEntityType), stringAttr(item, attrNaturalKey)
			report.Scanned[kind]++
			groups[[2]string{kind, key}] = append(groups[[2]string{kind, key}], dedupeItem{
				pk:     stringAttr(item, attrPK),
				gsi1sk: stringAttr(item, attrGSI1SK),
				id:     stringAttr(item, "id"),
			})
		}
	}

	for group, items := range groups {
		if len(items) < 2 {
			continue
		}
		sort.Slice(items, func(i, j int) bool { return items[i].gsi1sk < items[j].gsi1sk })
		keep, extra := items[0], items[1:]
		report.Duplicates[group[0]] += len(extra)

		logger.Info("Duplicate group found",
			zap.String("entityType", group[0]),
			zap.String("keep", keep.id),
			zap.Int("duplicates", len(extra)))
		if dryRun {
			continue
		}

		for _, dup := range extra {
			_, err := client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(tableName),
				Key: map[string]types.AttributeValue{
					attrPK: &types.AttributeValueMemberS{Value: dup.pk},
					attrSK: &types.AttributeValueMemberS{Value: metadataSK},
				},
			})
			if err != nil {
				return report, fmt.Errorf("failed to delete duplicate %s: %w", dup.pk, err)
			}
			report.Deleted++
		}

		guard := guardKey(group[0], group[1])
		guard[attrEntityType] = &types.AttributeValueMemberS{Value: guardSK}
		guard[attrOwnerID] = &types.AttributeValueMemberS{Value: keep.id}
		if _, err := client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(tableName), Item: guard}); err != nil {
			return report, fmt.Errorf("failed to repair guard for %s: %w", keep.pk, err)
		}
	}
	return report, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
