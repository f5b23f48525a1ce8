// Package handlers is the REST surface of the finance backend.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("finance-backend/handlers")

// startSpan opens a span named after the operation, tagged with the request's base.
func startSpan(c *gin.Context, name string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(c.Request.Context(), name)
	if baseId, ok := utils.GetBaseIdFromContext(ctx); ok {
		span.SetAttributes(attribute.String("base_id", baseId))
	}
	return ctx, span
}

// errorStatus maps domain errors to HTTP status codes. Errors without a known
// kind are server faults.
func errorStatus(err error) int {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, utils.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, utils.ErrorDuplicate), errors.Is(err, utils.ErrorConflict),
		utils.IsDuplicateKeyErr(err), utils.IsForeignKeyErr(err):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorInvalid), errors.Is(err, utils.ErrorBaseRequired),
		errors.As(err, &validationErrors):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	_ = c.Error(err)

	if status == http.StatusInternalServerError {
		config.LogError(config.GetLogger(), "handler.go", "respondError", c.Request.Method+" "+c.FullPath(), nil, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(status, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	switch {
	case utils.IsDuplicateKeyErr(err):
		c.JSON(status, gin.H{"error": utils.ErrorDuplicate.Error()})
	case utils.IsForeignKeyErr(err):
		c.JSON(status, gin.H{"error": "record is referenced by other records"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(status, gin.H{"error": utils.ErrorRecordNotFound.Error()})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return false
	}
	return true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func queryString(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

func queryInt(c *gin.Context, key string) (*int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, utils.Invalid(key + " must be a number")
	}
	return &n, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, utils.Invalid(key + " must be true or false")
	}
	return &b, nil
}

func queryDate(c *gin.Context, key string) (*models.MyDateString, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseMyDate(v)
	if err != nil {
		return nil, utils.Invalid(key + ": " + err.Error())
	}
	return &d, nil
}

// dateRange reads the required start_date/end_date pair.
func dateRange(c *gin.Context) (models.MyDateString, models.MyDateString, error) {
	start, err := queryDate(c, "start_date")
	if err != nil {
		return models.MyDateString{}, models.MyDateString{}, err
	}
	end, err := queryDate(c, "end_date")
	if err != nil {
		return models.MyDateString{}, models.MyDateString{}, err
	}
	if start == nil || end == nil {
		return models.MyDateString{}, models.MyDateString{}, utils.Invalid("start_date and end_date are required")
	}
	if end.Time().Before(start.Time()) {
		return models.MyDateString{}, models.MyDateString{}, utils.Invalid("end_date is before start_date")
	}
	return *start, *end, nil
}

type pageQuery struct {
	Limit int
	After *string
}

func page(c *gin.Context) (pageQuery, error) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return pageQuery{}, err
	}
	q := pageQuery{After: queryString(c, "after")}
	if limit != nil {
		q.Limit = *limit
	}
	return q, nil
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
