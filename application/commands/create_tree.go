package commands

import (
	pkgerrors "famtree-backend/pkg/errors"
	"famtree-backend/pkg/utils"
)

// CreateTreeCommand creates a new family tree. Any approved family member
// may create one; editing it later requires the admin role.
type CreateTreeCommand struct {
	FamilyID    string `json:"familyId" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	CallerID    string `json:"-"`
}

// Validate checks the command shape
func (c CreateTreeCommand) Validate() error {
	if c.CallerID == "" {
		return pkgerrors.NewUnauthorizedError("missing caller identity")
	}
	if err := utils.ValidateStruct(c); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}
