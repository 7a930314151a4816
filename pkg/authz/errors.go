package authz

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrForbidden is matched by every denial returned from Service.
var ErrForbidden = errors.New("permission denied")

// ForbiddenError describes a denied request.
type ForbiddenError struct {
	Object string
	Action string
	Domain string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("authz: %s on %s denied in %s", e.Action, e.Object, e.Domain)
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

func forbiddenError(req Request) *ForbiddenError {
	return &ForbiddenError{Object: req.Object, Action: req.Action, Domain: req.Domain}
}

func configError(msg string, args ...any) error {
	return fmt.Errorf("authz: "+msg, args...)
}
