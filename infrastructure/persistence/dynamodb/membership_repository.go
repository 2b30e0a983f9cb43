package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"famtree-backend/application/ports"
	pkgerrors "famtree-backend/pkg/errors"
)

// MembershipRepository reads family membership records. Memberships are
// owned by the family service; this repository never writes them.
type MembershipRepository struct {
	client    *dynamodb.Client
	tableName string
}

// NewMembershipRepository creates the repository
func NewMembershipRepository(client *dynamodb.Client, tableName string) ports.MembershipRepository {
	return &MembershipRepository{
		client:    client,
		tableName: tableName,
	}
}

// membershipItem is the DynamoDB shape of a membership record
type membershipItem struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	FamilyID string `dynamodbav:"FamilyID"`
	UserID   string `dynamodbav:"UserID"`
	Role     string `dynamodbav:"Role"`
	Approved bool   `dynamodbav:"Approved"`
}

// GetMembership returns the user's membership in the family
func (r *MembershipRepository) GetMembership(ctx context.Context, familyID, userID string) (*ports.Membership, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey(familyPK(familyID), memberSK(userID)),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get membership", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("membership")
	}

	var item membershipItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal membership item")
	}

	return &ports.Membership{
		FamilyID: item.FamilyID,
		UserID:   item.UserID,
		Role:     item.Role,
		Approved: item.Approved,
	}, nil
}
