package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/httpapi"
	"github.com/iota-uz/hrdesk/pkg/intl"
	"github.com/iota-uz/hrdesk/pkg/listview"
)

const maxBodyBytes = 1 << 20

type Options struct {
	PageSize    int
	MaxPageSize int
}

func (o Options) normalized() Options {
	if o.PageSize <= 0 {
		o.PageSize = listview.DefaultPageSize
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 100
	}
	return o
}

func dictionary(ctx context.Context) listview.Dictionary {
	if d, ok := intl.UseDictionary(ctx); ok {
		return d
	}
	return listview.DefaultDictionary()
}

func recordID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// statusOf maps service errors to HTTP statuses.
func statusOf(err error) int {
	var verr *listview.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, composables.ErrNoAuthState):
		return http.StatusUnauthorized
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, record.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, record.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, resources.ErrMalformedBody),
		errors.Is(err, listview.ErrUnknownFilter),
		errors.Is(err, listview.ErrUnknownColumn),
		errors.Is(err, listview.ErrNotSortable),
		errors.Is(err, listview.ErrPageOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure answers err in the {status:false, message, errors} envelope.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	dict := dictionary(r.Context())
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		composables.UseLogger(r.Context()).WithError(err).Error("hrm request failed")
	}
	var verr *listview.ValidationError
	if errors.As(err, &verr) {
		_ = httpapi.WriteFailure(w, status, dict.T(listview.KeyValidationFailed), verr.Fields)
		return
	}
	message := resources.MutationMessage(dict, err)
	switch {
	case status == http.StatusInternalServerError && r.Method == http.MethodGet:
		message = dict.T(listview.KeyFailedToLoad)
	case status == http.StatusUnauthorized:
		message = dict.T("Content.Unauthorized")
	case status == http.StatusBadRequest:
		if !errors.Is(err, resources.ErrMalformedBody) {
			message = err.Error()
		}
	}
	_ = httpapi.WriteFailure(w, status, message, nil)
}
