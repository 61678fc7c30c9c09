package di

import (
	"context"
	"fmt"
	"net/http"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/application/services"
	"mindbloom-backend/infrastructure/ai/gemini"
	"mindbloom-backend/infrastructure/ai/ribbon"
	"mindbloom-backend/infrastructure/config"
	"mindbloom-backend/infrastructure/messaging/eventbridge"
	"mindbloom-backend/infrastructure/persistence/dynamodb"
	"mindbloom-backend/infrastructure/persistence/memory"
	"mindbloom-backend/infrastructure/storage/local"
	"mindbloom-backend/interfaces/http/rest"
	"mindbloom-backend/interfaces/http/rest/middleware"
	"mindbloom-backend/pkg/auth"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/observability"
	"mindbloom-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// metricsNamespace prefixes the Prometheus series and the CloudWatch namespace.
const metricsNamespace = "mindbloom"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(observability.LogConfig{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
	})
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client. DYNAMODB_ENDPOINT points
// it at DynamoDB Local.
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideRepositories picks the storage backend named by STORAGE_BACKEND.
func ProvideRepositories(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *ports.Repositories {
	if cfg.StorageBackend == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepositories()
	}
	return dynamodb.NewRepositories(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured and
// only logs events otherwise.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates metrics instance. Without ENABLE_METRICS nothing is
// sent to CloudWatch.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("MindBloom/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideCollector creates the Prometheus collector served on /metrics.
func ProvideCollector() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.EnableTracing)
}

// ProvideGeminiClient creates the LLM client. Without GEMINI_API_KEY the
// client reports itself disabled.
func ProvideGeminiClient(
	ctx context.Context,
	cfg *config.Config,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	collector *observability.Collector,
	logger *zap.Logger,
) (*gemini.Client, error) {
	return gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.AITimeout,
	}, tracer, metrics, collector, logger)
}

// ProvideRibbonClient creates the voice interview client
func ProvideRibbonClient(
	cfg *config.Config,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	collector *observability.Collector,
	logger *zap.Logger,
) *ribbon.Client {
	return ribbon.NewClient(ribbon.Config{
		APIKey:  cfg.RibbonAPIKey,
		BaseURL: cfg.RibbonBaseURL,
		Timeout: cfg.AITimeout,
	}, tracer, metrics, collector, logger)
}

// ProvideFileStore creates the upload directory store
func ProvideFileStore(cfg *config.Config) (ports.FileStore, error) {
	return local.NewFileStore(cfg.UploadDir)
}

// ProvideServiceBase collects what every service shares.
func ProvideServiceBase(publisher ports.EventPublisher, collector *observability.Collector, logger *zap.Logger) services.Base {
	return services.Base{
		Clock:     utils.SystemClock,
		Publisher: publisher,
		Created:   collector.Created,
		Logger:    logger,
	}
}

// ProvideSettings extracts the service tunables from the configuration.
func ProvideSettings(cfg *config.Config) services.Settings {
	return services.Settings{
		RelevanceStrategy: cfg.RelevanceStrategy,
		MaxUploadBytes:    cfg.MaxUploadBytes,
	}
}

// ProvideServices wires the application services
func ProvideServices(
	base services.Base,
	repos *ports.Repositories,
	gen *gemini.Client,
	voice *ribbon.Client,
	files ports.FileStore,
	settings services.Settings,
	metrics *observability.Metrics,
	collector *observability.Collector,
) *services.Services {
	return services.NewServices(base, repos, gen, voice, files, settings, metrics, collector)
}

// ProvideJWTValidator creates the token validator. RS256 is used when
// JWT_PUBLIC_KEY is set and HS256 otherwise.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: cfg.JWTSigningMethod(),
		PublicKey:     cfg.JWTPublicKey,
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
	})
}

// ProvideAuthenticator creates the authentication middleware. A limit of
// zero disables that limiter.
func ProvideAuthenticator(validator *auth.JWTValidator, cfg *config.Config, logger *zap.Logger) *middleware.Authenticator {
	var ipLimiter, userLimiter auth.RateLimiter
	if cfg.IPRateLimit > 0 {
		ipLimiter = auth.NewIPRateLimiter(cfg.IPRateLimit)
	}
	if cfg.UserRateLimit > 0 {
		userLimiter = auth.NewUserRateLimiter(cfg.UserRateLimit)
	}
	return middleware.NewAuthenticator(validator, ipLimiter, userLimiter, logger)
}

// ProvideErrorHandler creates the error handler. Internal details are only
// exposed in development.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouterOptions configures the HTTP surface. Readiness pings the
// DynamoDB table unless the in-memory backend is used.
func ProvideRouterOptions(client *awsdynamodb.Client, cfg *config.Config) rest.Options {
	opts := rest.Options{
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if cfg.StorageBackend != config.StorageMemory {
		table := cfg.DynamoDBTable
		opts.Ready = func(ctx context.Context) error {
			return dynamodb.Ping(ctx, client, table)
		}
	}
	return opts
}

// ProvideHTTPHandler builds the chi router
func ProvideHTTPHandler(
	svcs *services.Services,
	authenticator *middleware.Authenticator,
	errs *pkgerrors.ErrorHandler,
	collector *observability.Collector,
	opts rest.Options,
	logger *zap.Logger,
) http.Handler {
	return rest.NewRouter(svcs, authenticator, errs, collector, opts, logger).Setup()
}
