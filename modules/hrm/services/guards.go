package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/entities"
	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
)

// BranchInUse refuses to delete a branch that employees still belong to.
func BranchInUse(employees record.Repository[entities.Employee]) DeleteGuard[entities.Branch] {
	return func(ctx context.Context, branch entities.Branch) error {
		rows, err := employees.List(ctx)
		if err != nil {
			return errors.Wrap(err, "list employees")
		}
		for _, e := range rows {
			if e.BranchID == branch.ID {
				return errors.Wrapf(record.ErrInUse, "branch %d has employees", branch.ID)
			}
		}
		return nil
	}
}
