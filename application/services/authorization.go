package services

import (
	"context"

	"famtree-backend/application/ports"
	pkgerrors "famtree-backend/pkg/errors"

	"go.uber.org/zap"
)

// Access is the caller's capability set for a family's trees
type Access struct {
	CanRead  bool
	CanWrite bool
}

// AuthorizationGate answers "may this caller read or edit this family's
// trees". Membership and role management is an external capability; the
// gate only consults it.
type AuthorizationGate struct {
	memberships ports.MembershipRepository
	logger      *zap.Logger
}

// NewAuthorizationGate creates an authorization gate
func NewAuthorizationGate(memberships ports.MembershipRepository, logger *zap.Logger) *AuthorizationGate {
	return &AuthorizationGate{
		memberships: memberships,
		logger:      logger,
	}
}

// Authorize resolves the caller's capabilities for a family. Read requires
// an approved membership; write additionally requires the admin role. A
// missing membership yields no access rather than an error.
func (g *AuthorizationGate) Authorize(ctx context.Context, userID, familyID string) (Access, error) {
	membership, err := g.memberships.GetMembership(ctx, familyID, userID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return Access{}, nil
		}
		g.logger.Error("membership lookup failed",
			zap.String("familyID", familyID),
			zap.String("userID", userID),
			zap.Error(err),
		)
		return Access{}, pkgerrors.Wrap(err, "membership lookup")
	}

	return Access{
		CanRead:  membership.IsApprovedMember(),
		CanWrite: membership.IsAdmin(),
	}, nil
}
