package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// respondLifecycleError -> menerjemahkan jenis error service ke status HTTP
func respondLifecycleError(c *gin.Context, err error) {
	var partial *services.PartialCommitError
	if errors.As(err, &partial) {
		utils.ErrorLogger.Errorf("%s: partial commit on order %s: %v", partial.Op, partial.OrderID, partial.Err)
		utils.RespondErrorData(c, http.StatusBadGateway, fmt.Errorf("%s partially committed: %s", partial.Op, partial.Message()), gin.H{
			"committed": partial.Committed,
			"failed":    partial.Failed,
			"hint":      partial.Hint,
		})
		return
	}

	utils.RespondError(c, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrConflict),
		errors.Is(err, store.ErrStale), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
