package di

import (
	"context"

	"go.uber.org/zap"

	"famtree-backend/application/commands/bus"
	"famtree-backend/application/ports"
	querybus "famtree-backend/application/queries/bus"
	"famtree-backend/infrastructure/config"
	"famtree-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	TreeRepo       ports.TreeRepository
	NodeRepo       ports.NodeRepository
	RelationRepo   ports.RelationRepository
	MembershipRepo ports.MembershipRepository
	UserDirectory  ports.UserDirectory
	EventPublisher ports.EventPublisher
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	JWTValidator   *auth.JWTValidator
}

// NewContainer assembles the full dependency graph by hand. It mirrors
// the wire provider set so either entry point yields the same graph.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dynamoClient := ProvideDynamoDBClient(awsCfg)
	eventBridgeClient := ProvideEventBridgeClient(awsCfg)

	treeRepo := ProvideTreeRepository(dynamoClient, cfg, logger)
	nodeRepo := ProvideNodeRepository(dynamoClient, cfg, logger)
	relationRepo := ProvideRelationRepository(dynamoClient, cfg, logger)
	membershipRepo := ProvideMembershipRepository(dynamoClient, cfg)
	userDirectory := ProvideUserDirectory(dynamoClient, cfg)
	publisher := ProvideEventPublisher(eventBridgeClient, cfg, logger)

	gate := ProvideAuthorizationGate(membershipRepo, logger)
	validator := ProvideRelationValidator()
	domainCfg := ProvideDomainConfig(cfg)

	commandBus, err := ProvideCommandBus(
		treeRepo, nodeRepo, relationRepo, userDirectory,
		gate, validator, publisher, domainCfg, logger)
	if err != nil {
		return nil, err
	}

	queryBus, err := ProvideQueryBus(treeRepo, nodeRepo, relationRepo, userDirectory, gate, logger)
	if err != nil {
		return nil, err
	}

	jwtValidator, err := ProvideJWTValidator(cfg)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:         cfg,
		Logger:         logger,
		TreeRepo:       treeRepo,
		NodeRepo:       nodeRepo,
		RelationRepo:   relationRepo,
		MembershipRepo: membershipRepo,
		UserDirectory:  userDirectory,
		EventPublisher: publisher,
		CommandBus:     commandBus,
		QueryBus:       queryBus,
		JWTValidator:   jwtValidator,
	}, nil
}
