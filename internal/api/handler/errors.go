package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const operatorIDKey = "operatorID"

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateActiveSession),
		errors.Is(err, domain.ErrAreaFull),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrOverlapConflict),
		errors.Is(err, domain.ErrInUse),
		errors.Is(err, repository.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoTariffForDuration):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Internal failures keep the message generic
// and put the cause under "details".
func respondError(c *gin.Context, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Handler: %s failed: %v", action, err)
		c.JSON(status, gin.H{"error": "could not " + action, "details": err.Error()})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// operatorFrom returns the authenticated operator set by the auth middleware.
func operatorFrom(c *gin.Context) uuid.NullUUID {
	if v, ok := c.Get(operatorIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return uuid.NullUUID{UUID: id, Valid: true}
		}
	}
	return uuid.NullUUID{}
}

// SetOperator stores the operator id where handlers look for it.
func SetOperator(c *gin.Context, id uuid.UUID) {
	c.Set(operatorIDKey, id)
}
