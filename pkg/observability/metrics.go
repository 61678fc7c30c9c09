package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client used for metrics.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes business metrics to CloudWatch. A Metrics without a
// client records nothing.
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordLatency records how long an operation against an external service took.
func (m *Metrics) RecordLatency(ctx context.Context, operation string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("OperationLatency"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(operation)},
			{Name: aws.String("Status"), Value: aws.String(status)},
		},
		Value: aws.Float64(float64(latency.Milliseconds())),
		Unit:  types.StandardUnitMilliseconds,
	})
}

// RecordRelevance records which strategy produced a relevance result and how many memories matched.
func (m *Metrics) RecordRelevance(ctx context.Context, strategy string, matches int) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("RelevantMemories"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Strategy"), Value: aws.String(strategy)},
		},
		Value: aws.Float64(float64(matches)),
		Unit:  types.StandardUnitCount,
	})
}

func (m *Metrics) put(ctx context.Context, datum types.MetricDatum) {
	if m == nil || m.client == nil {
		return
	}
	datum.Timestamp = aws.Time(time.Now())

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	})
	if err != nil {
		m.logger.Warn("Failed to send metrics", zap.Error(err), zap.String("metric", aws.ToString(datum.MetricName)))
	}
}
