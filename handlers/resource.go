package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// The CRUD endpoints of stores, categories, payment methods, movement types and
// clientes/fornecedores share these shapes.

func createHandler[In any, Out any](name string, create func(context.Context, *In) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if !bindJSON(c, &input) {
			return
		}
		ctx, span := startSpan(c, "create "+name)
		defer span.End()

		result, err := create(ctx, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func updateHandler[In any, Out any](name string, update func(context.Context, int, *In) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input In
		if !bindJSON(c, &input) {
			return
		}
		ctx, span := startSpan(c, "update "+name)
		defer span.End()

		result, err := update(ctx, id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func deleteHandler[Out any](name string, remove func(context.Context, int) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx, span := startSpan(c, "delete "+name)
		defer span.End()

		result, err := remove(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getHandler[Out any](get func(context.Context, int) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		result, err := get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func toggleActiveHandler[Out any](name string, toggle func(context.Context, int, bool) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req toggleActiveRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, span := startSpan(c, "toggle "+name)
		defer span.End()

		result, err := toggle(ctx, id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// listAllHandler serves the cached picker list of a resource.
func listAllHandler[Out any](list func(context.Context) ([]*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := list(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
