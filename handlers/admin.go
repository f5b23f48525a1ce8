package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/models"
)

func listBasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		bases, err := models.GetClientBases(c.Request.Context(), queryString(c, "name"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bases)
	}
}

func createBaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewClientBase
		if !bindJSON(c, &input) {
			return
		}
		ctx, span := startSpan(c, "create client base")
		defer span.End()

		base, err := models.CreateClientBase(ctx, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, base)
	}
}

func getBaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		base, err := models.GetClientBase(c.Request.Context(), c.Param("baseId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, base)
	}
}

func updateBaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewClientBase
		if !bindJSON(c, &input) {
			return
		}
		base, err := models.UpdateClientBase(c.Request.Context(), c.Param("baseId"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, base)
	}
}

func toggleBaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req toggleActiveRequest
		if !bindJSON(c, &req) {
			return
		}
		base, err := models.ToggleActiveClientBase(c.Request.Context(), c.Param("baseId"), *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, base)
	}
}

func listAuthorizedUidsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListAuthorizedUids(c.Request.Context(), c.Param("baseId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func addAuthorizedUidHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewAuthorizedUid
		if !bindJSON(c, &input) {
			return
		}
		access, err := models.AddAuthorizedUid(c.Request.Context(), c.Param("baseId"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, access)
	}
}

func removeAuthorizedUidHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.RemoveAuthorizedUid(c.Request.Context(), c.Param("baseId"), c.Param("uid"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetUsers(c.Request.Context(), queryString(c, "search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func createAdminUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewAdminUser
		if !bindJSON(c, &input) {
			return
		}
		ctx, span := startSpan(c, "create admin user")
		defer span.End()

		user, err := models.CreateAdminUser(ctx, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func toggleUserAuthStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := startSpan(c, "toggle user auth status")
		defer span.End()

		uid := c.Param("uid")
		isActive, err := models.ToggleUserAuthStatus(ctx, uid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": uid, "is_active": isActive})
	}
}

func unhealthyOutboxHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := queryInt(c, "limit")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		n := 0
		if limit != nil {
			n = *limit
		}
		results, err := models.ListUnhealthyOutbox(c.Request.Context(), n)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func outboxReplayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			badRequest(c, "invalid record id")
			return
		}
		status, err := models.ReplayOutboxRecord(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
