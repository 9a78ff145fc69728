package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumcore/services"
	"github.com/cppla/forumcore/utils"
)

// respondError maps an engine error onto the HTTP status and code scheme.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40020, err.Error())
	case errors.Is(err, services.ErrLocked):
		utils.Error(ctx, http.StatusBadRequest, 40030, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrPersistence):
		utils.Error(ctx, http.StatusInternalServerError, 50020, "storage is temporarily unavailable")
	default:
		utils.Sugar.Errorw("unexpected engine error", "path", ctx.FullPath(), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}
