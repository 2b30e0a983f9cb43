package dynamodb

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"famtree-backend/application/ports"
	"famtree-backend/domain/core/entities"
	"famtree-backend/domain/core/valueobjects"
	pkgerrors "famtree-backend/pkg/errors"
)

// TreeRepository implements ports.TreeRepository on DynamoDB
type TreeRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewTreeRepository creates the repository. indexName is the GSI keyed by
// TREEID#<treeID>, used when the family is not known up front.
func NewTreeRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.TreeRepository {
	return &TreeRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// treeItem is the DynamoDB shape of tree metadata
type treeItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	TreeID      string `dynamodbav:"TreeID"`
	FamilyID    string `dynamodbav:"FamilyID"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	CreatorID   string `dynamodbav:"CreatorID"`
	Version     int    `dynamodbav:"Version"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

func newTreeItem(tree *entities.Tree) treeItem {
	return treeItem{
		PK:          familyPK(tree.FamilyID()),
		SK:          treeSK(tree.ID().String()),
		GSI1PK:      treeGSI1PK(tree.ID().String()),
		GSI1SK:      gsi1SKMetadata,
		EntityType:  "TREE",
		TreeID:      tree.ID().String(),
		FamilyID:    tree.FamilyID(),
		Name:        tree.Name(),
		Description: tree.Description(),
		CreatorID:   tree.CreatorID(),
		Version:     tree.Version(),
		CreatedAt:   tree.CreatedAt().Format(time.RFC3339),
		UpdatedAt:   tree.UpdatedAt().Format(time.RFC3339),
	}
}

func (i treeItem) toEntity() (*entities.Tree, error) {
	treeID, err := valueobjects.NewTreeIDFromString(i.TreeID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored tree has invalid id: " + err.Error())
	}
	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)
	return entities.ReconstructTree(
		treeID, i.FamilyID, i.Name, i.Description, i.CreatorID,
		i.Version, createdAt, updatedAt,
	)
}

// Save writes the tree unconditionally
func (r *TreeRepository) Save(ctx context.Context, tree *entities.Tree) error {
	item, err := attributevalue.MarshalMap(newTreeItem(tree))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal tree item")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return mapWriteError("save tree", err)
	}
	return nil
}

// SaveVersioned writes the tree only when the stored version still equals
// expectedVersion. New trees (expectedVersion 0) require the item to not
// exist yet.
func (r *TreeRepository) SaveVersioned(ctx context.Context, tree *entities.Tree, expectedVersion int) error {
	item, err := attributevalue.MarshalMap(newTreeItem(tree))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal tree item")
	}

	var condition expression.ConditionBuilder
	if expectedVersion == 0 {
		condition = expression.AttributeNotExists(expression.Name("PK"))
	} else {
		condition = expression.Equal(expression.Name("Version"), expression.Value(expectedVersion))
	}
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build condition expression")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		mapped := mapWriteError("save tree version "+strconv.Itoa(expectedVersion), err)
		if pkgerrors.IsConflict(mapped) {
			r.logger.Warn("tree version conflict",
				zap.String("treeId", tree.ID().String()),
				zap.Int("expectedVersion", expectedVersion))
		}
		return mapped
	}
	return nil
}

// GetByID looks the tree up through the GSI since callers address trees
// by id alone
func (r *TreeRepository) GetByID(ctx context.Context, id valueobjects.TreeID) (*entities.Tree, error) {
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(treeGSI1PK(id.String()))).
		And(expression.Key("GSI1SK").Equal(expression.Value(gsi1SKMetadata)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build key condition")
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get tree", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("tree")
	}

	var item treeItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal tree item")
	}
	return item.toEntity()
}
