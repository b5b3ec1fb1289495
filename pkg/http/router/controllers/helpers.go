package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/mip"
	"github.com/lintang-b-s/Multicutx/pkg/multicut"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]any

func (api *multicutAPI) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (api *multicutAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	if err := api.writeJSON(w, status, envelope{"error": resp.Error}, nil); err != nil {
		api.log.Error("write error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *multicutAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("server error", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	api.errorResponse(w, r, http.StatusInternalServerError, "internal", util.MessageInternalServerError)
}

func (api *multicutAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

// getStatusCode maps solver and input errors to a response.
func (api *multicutAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, util.ErrBadParamInput), errors.Is(err, datastructure.ErrInvalidGraph):
		api.BadRequestResponse(w, r, err)
	case errors.Is(err, util.ErrTimeout), errors.Is(err, mip.ErrTimeLimit), errors.Is(err, mip.ErrInterrupted),
		errors.Is(err, context.DeadlineExceeded):
		api.errorResponse(w, r, http.StatusGatewayTimeout, "timeout", err.Error())
	case errors.Is(err, multicut.ErrNoFeasibleSolution), errors.Is(err, multicut.ErrInvalidMulticut),
		errors.Is(err, multicut.ErrEngine):
		api.log.Error("solver error", zap.String("path", r.URL.Path), zap.Error(err))
		api.errorResponse(w, r, http.StatusInternalServerError, "solver", err.Error())
	default:
		api.ServerErrorResponse(w, r, err)
	}
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
