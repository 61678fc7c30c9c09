// Package handlers adapts the application services to HTTP. Handlers decode
// and validate requests, call one service method and encode the result;
// access control lives in the services.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"mindbloom-backend/application/services"
	"mindbloom-backend/pkg/auth"
	"mindbloom-backend/pkg/common"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/utils"

	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type base struct {
	errs   *pkgerrors.ErrorHandler
	logger *zap.Logger
}

func newBase(errs *pkgerrors.ErrorHandler, logger *zap.Logger) base {
	return base{errs: errs, logger: logger}
}

func (b base) actor(r *http.Request) (*services.Actor, error) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return nil, pkgerrors.NewUnauthorizedError("Unauthorized")
	}
	return user, nil
}

// decode reads a JSON body into v and validates it. An empty body decodes
// to the zero value.
func (b base) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := common.DecodeJSON(w, r, v, maxBodyBytes); err != nil && !errors.Is(err, io.EOF) {
		return pkgerrors.NewValidationError("Invalid request body: " + err.Error())
	}
	return validate(v)
}

func validate(v interface{}) error {
	if err := utils.ValidateStruct(v); err != nil {
		return pkgerrors.NewValidationError(err.Error()).WithCode(common.StandardErrorCodes.ValidationError)
	}
	return nil
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	b.errs.Handle(w, r, err)
}

func (b base) ok(w http.ResponseWriter, data interface{}) {
	common.RespondJSON(w, http.StatusOK, data)
}

func (b base) created(w http.ResponseWriter, data interface{}) {
	common.RespondJSON(w, http.StatusCreated, data)
}

func (b base) page(w http.ResponseWriter, data interface{}, info *common.PaginationInfo) {
	common.RespondWithMeta(w, http.StatusOK, data, &common.MetaInfo{Pagination: info})
}

func (b base) deleted(w http.ResponseWriter, id string) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true})
}
