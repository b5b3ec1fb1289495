package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Multicutx/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

type multicutAPI struct {
	multicutService MulticutService
	log             *zap.Logger
	validate        *validator.Validate
	trans           ut.Translator
}

func New(multicutService MulticutService, log *zap.Logger) *multicutAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &multicutAPI{
		multicutService: multicutService,
		log:             log,
		validate:        validate,
		trans:           trans,
	}
}

func (api *multicutAPI) Routes(group *helper.RouteGroup) {
	group.POST("/solve", api.solve)
	group.POST("/evaluate", api.evaluate)
}

// solve godoc
//
//	@Summary		minimum cost multicut of a level
//	@Description	solves the level to optimality and returns the cut flag of every edge in request order.
//	@Tags			multicut
//	@Accept			application/json
//	@Produce		application/json
//	@Param			body	body		levelRequest	true	"level"
//	@Success		200		{object}	solveResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/solve [post]
func (api *multicutAPI) solve(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, ok := api.decodeLevel(w, r)
	if !ok {
		return
	}

	level := request.ToLevel()
	sol, graph, cached, err := api.multicutService.Solve(r.Context(), level)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewSolveResponse(level, graph, sol, cached)},
		headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// evaluate godoc
//
//	@Summary		score a player's cut
//	@Description	checks that the IsCut flags form a multicut and compares their cost to the optimum.
//	@Tags			multicut
//	@Accept			application/json
//	@Produce		application/json
//	@Param			body	body		levelRequest	true	"level with IsCut flags"
//	@Success		200		{object}	evaluateResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/evaluate [post]
func (api *multicutAPI) evaluate(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, ok := api.decodeLevel(w, r)
	if !ok {
		return
	}

	level := request.ToLevel()
	eval, err := api.multicutService.Evaluate(r.Context(), level)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewEvaluateResponse(level, eval)},
		headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *multicutAPI) decodeLevel(w http.ResponseWriter, r *http.Request) (levelRequest, bool) {
	var request levelRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return request, false
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return request, false
	}

	if err := api.validate.Struct(request); err != nil {
		vv := translateError(err, api.trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return request, false
	}
	return request, true
}
