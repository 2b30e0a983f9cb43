// Package dynamodb implements the persistence ports on a single DynamoDB
// table. This is the only package that knows the key schema.
//
// Layout:
//
//	FAMILY#<familyID> / TREE#<treeID>      tree metadata (GSI1: TREEID#<treeID> / METADATA)
//	FAMILY#<familyID> / MEMBER#<userID>    family membership record
//	TREE#<treeID>     / NODE#<nodeID>      person node
//	TREE#<treeID>     / RELATION#<relID>   relation edge
//	USER#<userID>     / PROFILE            user profile summary
package dynamodb

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgerrors "famtree-backend/pkg/errors"
)

const (
	gsi1SKMetadata = "METADATA"
	skProfile      = "PROFILE"
)

func familyPK(familyID string) string {
	return fmt.Sprintf("FAMILY#%s", familyID)
}

func treePK(treeID string) string {
	return fmt.Sprintf("TREE#%s", treeID)
}

func treeSK(treeID string) string {
	return fmt.Sprintf("TREE#%s", treeID)
}

func treeGSI1PK(treeID string) string {
	return fmt.Sprintf("TREEID#%s", treeID)
}

func nodeSK(nodeID string) string {
	return fmt.Sprintf("NODE#%s", nodeID)
}

func relationSK(relationID string) string {
	return fmt.Sprintf("RELATION#%s", relationID)
}

func memberSK(userID string) string {
	return fmt.Sprintf("MEMBER#%s", userID)
}

func userPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func stringKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// mapWriteError normalizes SDK failures into the application error
// taxonomy. Conditional check failures surface as conflicts so callers
// can report optimistic concurrency losses.
func mapWriteError(operation string, err error) error {
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return pkgerrors.NewConflictError("conditional write failed: " + operation)
	}

	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return pkgerrors.NewConflictError("conditional write failed: " + operation)
			}
		}
	}

	return pkgerrors.NewDatabaseError(operation, err)
}
