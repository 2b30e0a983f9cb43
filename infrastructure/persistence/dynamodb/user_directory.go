package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"famtree-backend/application/ports"
	pkgerrors "famtree-backend/pkg/errors"
)

// UserDirectory resolves user profile summaries. Profiles are owned by
// the identity service; this is a read-only view used to decorate trees.
type UserDirectory struct {
	client    *dynamodb.Client
	tableName string
}

// NewUserDirectory creates the directory
func NewUserDirectory(client *dynamodb.Client, tableName string) ports.UserDirectory {
	return &UserDirectory{
		client:    client,
		tableName: tableName,
	}
}

// userItem is the DynamoDB shape of a profile summary
type userItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	UserID      string `dynamodbav:"UserID"`
	DisplayName string `dynamodbav:"DisplayName"`
	AvatarURL   string `dynamodbav:"AvatarURL"`
}

// GetUser returns the profile summary for a user id
func (d *UserDirectory) GetUser(ctx context.Context, userID string) (*ports.UserSummary, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       stringKey(userPK(userID), skProfile),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal user item")
	}

	return &ports.UserSummary{
		ID:          item.UserID,
		DisplayName: item.DisplayName,
		AvatarURL:   item.AvatarURL,
	}, nil
}
