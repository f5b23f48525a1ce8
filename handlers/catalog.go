package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/models"
)

func listStoresHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		isActive, err := queryBool(c, "is_active")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		results, err := models.GetStores(c.Request.Context(), queryString(c, "name"), isActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func defaultStoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		store, err := models.GetDefaultStore(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, store)
	}
}

func listCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		isActive, err := queryBool(c, "is_active")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		var categoryType *models.CategoryType
		if v := queryString(c, "type"); v != nil {
			t := models.CategoryType(*v)
			if !t.IsValid() {
				badRequest(c, "invalid category type")
				return
			}
			categoryType = &t
		}
		results, err := models.GetCategories(c.Request.Context(), queryString(c, "name"), categoryType, isActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func listPaymentMethodsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.GetPaymentMethods(c.Request.Context(), queryString(c, "name"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func listMovementTypesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var category *models.MovementCategory
		if v := queryString(c, "category"); v != nil {
			m := models.MovementCategory(*v)
			if !m.IsValid() {
				badRequest(c, "invalid movement category")
				return
			}
			category = &m
		}
		results, err := models.GetMovementTypes(c.Request.Context(), queryString(c, "name"), category)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func listClientesFornecedoresHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.ClienteFornecedorFilter
		var err error
		filter.Search = queryString(c, "search")
		if filter.IsClient, err = queryBool(c, "is_client"); err != nil {
			badRequest(c, err.Error())
			return
		}
		if filter.IsSupplier, err = queryBool(c, "is_supplier"); err != nil {
			badRequest(c, err.Error())
			return
		}
		if filter.IsActive, err = queryBool(c, "is_active"); err != nil {
			badRequest(c, err.Error())
			return
		}
		results, err := models.GetClientesFornecedores(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// iconUploadHandler takes a multipart "file" field and sets it as the record's icon.
func iconUploadHandler(referenceType models.ReferenceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		data, _, ok := readUpload(c)
		if !ok {
			return
		}
		ctx, span := startSpan(c, "upload icon")
		defer span.End()

		result, err := models.UploadIcon(ctx, referenceType, id, data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// readUpload reads the multipart "file" field, capped at the upload limit.
func readUpload(c *gin.Context) ([]byte, string, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return nil, "", false
	}
	if header.Size > models.MaxUploadSizeBytes {
		badRequest(c, "file size exceeds 5MB limit")
		return nil, "", false
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, models.MaxUploadSizeBytes+1))
	if err != nil {
		respondError(c, err)
		return nil, "", false
	}
	return data, header.Filename, true
}
