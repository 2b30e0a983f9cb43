package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"famtree-backend/application/ports"
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
	"famtree-backend/pkg/utils"
)

// NodeRepository implements ports.NodeRepository on DynamoDB
type NodeRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewNodeRepository creates the repository
func NewNodeRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// nodeItem is the DynamoDB shape of a person node
type nodeItem struct {
	PK             string                 `dynamodbav:"PK"`
	SK             string                 `dynamodbav:"SK"`
	EntityType     string                 `dynamodbav:"EntityType"`
	NodeID         string                 `dynamodbav:"NodeID"`
	TreeID         string                 `dynamodbav:"TreeID"`
	FirstName      string                 `dynamodbav:"FirstName"`
	LastName       string                 `dynamodbav:"LastName"`
	DateOfBirth    string                 `dynamodbav:"DateOfBirth"`
	DateOfDeath    *string                `dynamodbav:"DateOfDeath,omitempty"`
	Gender         string                 `dynamodbav:"Gender"`
	IsAlive        bool                   `dynamodbav:"IsAlive"`
	BirthPlace     string                 `dynamodbav:"BirthPlace"`
	CurrentPlace   string                 `dynamodbav:"CurrentPlace"`
	ProfileImage   *string                `dynamodbav:"ProfileImage,omitempty"`
	Biography      *string                `dynamodbav:"Biography,omitempty"`
	CustomFields   map[string]interface{} `dynamodbav:"CustomFields,omitempty"`
	LinkedMemberID *string                `dynamodbav:"LinkedMemberID,omitempty"`
	PositionX      *float64               `dynamodbav:"PositionX,omitempty"`
	PositionY      *float64               `dynamodbav:"PositionY,omitempty"`
	CreatedAt      string                 `dynamodbav:"CreatedAt"`
	UpdatedAt      string                 `dynamodbav:"UpdatedAt"`
}

func newNodeItem(node *entities.Node) nodeItem {
	item := nodeItem{
		PK:             treePK(node.TreeID().String()),
		SK:             nodeSK(node.ID().String()),
		EntityType:     "NODE",
		NodeID:         node.ID().String(),
		TreeID:         node.TreeID().String(),
		FirstName:      node.FirstName(),
		LastName:       node.LastName(),
		DateOfBirth:    node.DateOfBirth().Format(time.RFC3339),
		DateOfDeath:    utils.FormatOptionalDate(node.DateOfDeath()),
		Gender:         string(node.Gender()),
		IsAlive:        node.IsAlive(),
		BirthPlace:     node.BirthPlace(),
		CurrentPlace:   node.CurrentPlace(),
		ProfileImage:   node.ProfileImage(),
		Biography:      node.Biography(),
		CustomFields:   node.CustomFields(),
		LinkedMemberID: node.LinkedMemberID(),
		CreatedAt:      node.CreatedAt().Format(time.RFC3339),
		UpdatedAt:      node.UpdatedAt().Format(time.RFC3339),
	}
	if pos := node.Position(); pos != nil {
		x, y := pos.X, pos.Y
		item.PositionX = &x
		item.PositionY = &y
	}
	return item
}

func (i nodeItem) toEntity() (*entities.Node, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(i.NodeID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored node has invalid id: " + err.Error())
	}
	treeID, err := valueobjects.NewTreeIDFromString(i.TreeID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored node has invalid tree id: " + err.Error())
	}

	gender, err := entities.ParseGender(i.Gender)
	if err != nil {
		return nil, err
	}
	birth, err := utils.ParseDate(i.DateOfBirth)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored node has invalid dateOfBirth")
	}
	death, err := utils.ParseOptionalDate(i.DateOfDeath)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored node has invalid dateOfDeath")
	}

	var position *entities.Position
	if i.PositionX != nil && i.PositionY != nil {
		position = &entities.Position{X: *i.PositionX, Y: *i.PositionY}
	}

	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)

	return entities.ReconstructNode(nodeID, treeID, entities.NodeAttributes{
		FirstName:      i.FirstName,
		LastName:       i.LastName,
		DateOfBirth:    birth,
		DateOfDeath:    death,
		IsAlive:        i.IsAlive,
		Gender:         gender,
		BirthPlace:     i.BirthPlace,
		CurrentPlace:   i.CurrentPlace,
		ProfileImage:   i.ProfileImage,
		Biography:      i.Biography,
		CustomFields:   i.CustomFields,
		LinkedMemberID: i.LinkedMemberID,
		Position:       position,
	}, createdAt, updatedAt)
}

// GetByTreeID returns every node of the tree
func (r *NodeRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Node, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(treePK(treeID.String()))).
		And(expression.Key("SK").BeginsWith("NODE#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build key condition")
	}

	var nodes []*entities.Node
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query tree nodes", err)
		}
		for _, raw := range page.Items {
			var item nodeItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal node item")
			}
			node, err := item.toEntity()
			if err != nil {
				r.logger.Warn("skipping corrupt node item",
					zap.String("nodeId", item.NodeID), zap.Error(err))
				continue
			}
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// BatchUpsert writes the batch as one transaction so it commits or fails
// as a unit
func (r *NodeRepository) BatchUpsert(ctx context.Context, treeID valueobjects.TreeID, nodes []*entities.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	transactItems := make([]types.TransactWriteItem, 0, len(nodes))
	for _, node := range nodes {
		item, err := attributevalue.MarshalMap(newNodeItem(node))
		if err != nil {
			return pkgerrors.Wrap(err, "failed to marshal node item")
		}
		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(r.tableName), Item: item},
		})
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return mapWriteError("batch upsert nodes", err)
	}
	return nil
}

// BatchDelete removes the batch as one transaction
func (r *NodeRepository) BatchDelete(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.NodeID) error {
	if len(ids) == 0 {
		return nil
	}

	transactItems := make([]types.TransactWriteItem, 0, len(ids))
	for _, id := range ids {
		transactItems = append(transactItems, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       stringKey(treePK(treeID.String()), nodeSK(id.String())),
			},
		})
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return mapWriteError("batch delete nodes", err)
	}
	return nil
}
