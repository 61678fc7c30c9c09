package di

import (
	"net/http"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/application/services"
	"mindbloom-backend/infrastructure/config"
	"mindbloom-backend/pkg/observability"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DynamoDB     *awsdynamodb.Client
	Repositories *ports.Repositories
	Metrics      *observability.Metrics
	Services     *services.Services
	Handler      http.Handler
}
