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

// RelationRepository implements ports.RelationRepository on DynamoDB
type RelationRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewRelationRepository creates the repository
func NewRelationRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.RelationRepository {
	return &RelationRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// relationItem is the DynamoDB shape of a relation edge
type relationItem struct {
	PK           string  `dynamodbav:"PK"`
	SK           string  `dynamodbav:"SK"`
	EntityType   string  `dynamodbav:"EntityType"`
	RelationID   string  `dynamodbav:"RelationID"`
	TreeID       string  `dynamodbav:"TreeID"`
	FromNodeID   string  `dynamodbav:"FromNodeID"`
	ToNodeID     string  `dynamodbav:"ToNodeID"`
	RelationType string  `dynamodbav:"RelationType"`
	MarriageDate *string `dynamodbav:"MarriageDate,omitempty"`
	DivorceDate  *string `dynamodbav:"DivorceDate,omitempty"`
	IsActive     bool    `dynamodbav:"IsActive"`
	CreatedAt    string  `dynamodbav:"CreatedAt"`
	UpdatedAt    string  `dynamodbav:"UpdatedAt"`
}

func newRelationItem(rel *entities.Relation) relationItem {
	return relationItem{
		PK:           treePK(rel.TreeID().String()),
		SK:           relationSK(rel.ID().String()),
		EntityType:   "RELATION",
		RelationID:   rel.ID().String(),
		TreeID:       rel.TreeID().String(),
		FromNodeID:   rel.FromNodeID().String(),
		ToNodeID:     rel.ToNodeID().String(),
		RelationType: string(rel.Type()),
		MarriageDate: utils.FormatOptionalDate(rel.MarriageDate()),
		DivorceDate:  utils.FormatOptionalDate(rel.DivorceDate()),
		IsActive:     rel.IsActive(),
		CreatedAt:    rel.CreatedAt().Format(time.RFC3339),
		UpdatedAt:    rel.UpdatedAt().Format(time.RFC3339),
	}
}

func (i relationItem) toEntity() (*entities.Relation, error) {
	relationID, err := valueobjects.NewRelationIDFromString(i.RelationID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored relation has invalid id: " + err.Error())
	}
	treeID, err := valueobjects.NewTreeIDFromString(i.TreeID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored relation has invalid tree id: " + err.Error())
	}
	from, err := valueobjects.NewNodeIDFromString(i.FromNodeID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored relation has invalid fromNodeId")
	}
	to, err := valueobjects.NewNodeIDFromString(i.ToNodeID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored relation has invalid toNodeId")
	}
	relationType, err := entities.ParseRelationType(i.RelationType)
	if err != nil {
		return nil, err
	}

	marriage, err := utils.ParseOptionalDate(i.MarriageDate)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored relation has invalid marriageDate")
	}
	divorce, err := utils.ParseOptionalDate(i.DivorceDate)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored relation has invalid divorceDate")
	}

	createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, i.UpdatedAt)

	return entities.ReconstructRelation(
		relationID, treeID, from, to, relationType,
		marriage, divorce, i.IsActive, createdAt, updatedAt,
	)
}

// GetByTreeID returns every relation of the tree
func (r *RelationRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Relation, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(treePK(treeID.String()))).
		And(expression.Key("SK").BeginsWith("RELATION#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build key condition")
	}

	var relations []*entities.Relation
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query tree relations", err)
		}
		for _, raw := range page.Items {
			var item relationItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal relation item")
			}
			rel, err := item.toEntity()
			if err != nil {
				r.logger.Warn("skipping corrupt relation item",
					zap.String("relationId", item.RelationID), zap.Error(err))
				continue
			}
			relations = append(relations, rel)
		}
	}
	return relations, nil
}

// BatchUpsert writes the batch as one transaction so it commits or fails
// as a unit
func (r *RelationRepository) BatchUpsert(ctx context.Context, treeID valueobjects.TreeID, relations []*entities.Relation) error {
	if len(relations) == 0 {
		return nil
	}

	transactItems := make([]types.TransactWriteItem, 0, len(relations))
	for _, rel := range relations {
		item, err := attributevalue.MarshalMap(newRelationItem(rel))
		if err != nil {
			return pkgerrors.Wrap(err, "failed to marshal relation item")
		}
		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(r.tableName), Item: item},
		})
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return mapWriteError("batch upsert relations", err)
	}
	return nil
}

// BatchDelete removes the batch as one transaction
func (r *RelationRepository) BatchDelete(ctx context.Context, treeID valueobjects.TreeID, ids []valueobjects.RelationID) error {
	if len(ids) == 0 {
		return nil
	}

	transactItems := make([]types.TransactWriteItem, 0, len(ids))
	for _, id := range ids {
		transactItems = append(transactItems, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       stringKey(treePK(treeID.String()), relationSK(id.String())),
			},
		})
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return mapWriteError("batch delete relations", err)
	}
	return nil
}
