// Package di wires the application graph. Providers are written for
// google/wire; container.go assembles the same graph by hand for
// callers that do not run the generator.
package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"famtree-backend/application/commands"
	"famtree-backend/application/commands/bus"
	commandhandlers "famtree-backend/application/commands/handlers"
	"famtree-backend/application/ports"
	"famtree-backend/application/queries"
	querybus "famtree-backend/application/queries/bus"
	queryhandlers "famtree-backend/application/queries/handlers"
	"famtree-backend/application/services"
	domainconfig "famtree-backend/domain/config"
	"famtree-backend/domain/core/validators"
	"famtree-backend/infrastructure/config"
	"famtree-backend/infrastructure/messaging/eventbridge"
	"famtree-backend/infrastructure/persistence/dynamodb"
	"famtree-backend/pkg/auth"
)

// ProvideLogger creates the logger for the configured environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads the AWS SDK configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideDomainConfig projects the sync tuning knobs into the domain layer
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideTreeRepository creates the tree repository
func ProvideTreeRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TreeRepository {
	return dynamodb.NewTreeRepository(client, cfg.DynamoDBTable, cfg.TreeIndexName, logger)
}

// ProvideNodeRepository creates the node repository
func ProvideNodeRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NodeRepository {
	return dynamodb.NewNodeRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideRelationRepository creates the relation repository
func ProvideRelationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.RelationRepository {
	return dynamodb.NewRelationRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideMembershipRepository creates the membership repository
func ProvideMembershipRepository(client *awsdynamodb.Client, cfg *config.Config) ports.MembershipRepository {
	return dynamodb.NewMembershipRepository(client, cfg.DynamoDBTable)
}

// ProvideUserDirectory creates the user directory
func ProvideUserDirectory(client *awsdynamodb.Client, cfg *config.Config) ports.UserDirectory {
	return dynamodb.NewUserDirectory(client, cfg.DynamoDBTable)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideAuthorizationGate creates the authorization gate
func ProvideAuthorizationGate(memberships ports.MembershipRepository, logger *zap.Logger) *services.AuthorizationGate {
	return services.NewAuthorizationGate(memberships, logger)
}

// ProvideRelationValidator creates the graph relation validator
func ProvideRelationValidator() *validators.RelationValidator {
	return validators.NewRelationValidator()
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(secret, cfg.JWTIssuer)
}

// ProvideCommandBus creates the command bus with all handlers registered
func ProvideCommandBus(
	trees ports.TreeRepository,
	nodes ports.NodeRepository,
	relations ports.RelationRepository,
	users ports.UserDirectory,
	gate *services.AuthorizationGate,
	validator *validators.RelationValidator,
	publisher ports.EventPublisher,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	syncHandler := commandhandlers.NewSyncTreeHandler(
		trees, nodes, relations, users, gate, validator, publisher, domainCfg, logger)
	if err := commandBus.Register(commands.SyncTreeCommand{},
		bus.Chain(syncHandler, bus.LoggingMiddleware(logger))); err != nil {
		return nil, err
	}

	createHandler := commandhandlers.NewCreateTreeHandler(trees, users, gate, publisher, logger)
	if err := commandBus.Register(commands.CreateTreeCommand{},
		bus.Chain(createHandler, bus.LoggingMiddleware(logger))); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// ProvideQueryBus creates the query bus with all handlers registered
func ProvideQueryBus(
	trees ports.TreeRepository,
	nodes ports.NodeRepository,
	relations ports.RelationRepository,
	users ports.UserDirectory,
	gate *services.AuthorizationGate,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	getHandler := queryhandlers.NewGetTreeHandler(trees, nodes, relations, users, gate, logger)
	if err := queryBus.Register(queries.GetTreeQuery{}, getHandler); err != nil {
		return nil, err
	}

	return queryBus, nil
}
