package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/models/reports"
	"github.com/mmdatafocus/finance_backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportQuery struct {
	Start   models.MyDateString
	End     models.MyDateString
	StoreId *int
}

func readReportQuery(c *gin.Context) (reportQuery, bool) {
	start, end, err := dateRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return reportQuery{}, false
	}
	storeId, err := queryInt(c, "store_id")
	if err != nil {
		badRequest(c, err.Error())
		return reportQuery{}, false
	}
	return reportQuery{Start: start, End: end, StoreId: storeId}, true
}

func dreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := readReportQuery(c)
		if !ok {
			return
		}
		ctx, span := startSpan(c, "dre report")
		defer span.End()

		result, err := reports.GenerateDREReport(ctx, q.Start, q.End, q.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func categorySummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := readReportQuery(c)
		if !ok {
			return
		}
		ctx, span := startSpan(c, "category summary")
		defer span.End()

		result, err := reports.GetCategorySummary(ctx, q.Start, q.End, q.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func dailySummariesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := readReportQuery(c)
		if !ok {
			return
		}
		result, err := models.GetStoreDailySummaries(c.Request.Context(), q.Start, q.End, q.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// sendWorkbook either streams the workbook or, with ?upload=true, stores it and
// returns its URL.
func sendWorkbook(c *gin.Context, name string, buf *bytes.Buffer) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102150405"))
	if c.Query("upload") == "true" {
		baseId, _ := utils.GetBaseIdFromContext(c.Request.Context())
		url, err := reports.UploadExport(c.Request.Context(), path.Join(baseId, "exports", filename), buf)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func dreExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := readReportQuery(c)
		if !ok {
			return
		}
		ctx, span := startSpan(c, "dre export")
		defer span.End()

		result, err := reports.GenerateDREReport(ctx, q.Start, q.End, q.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		buf, err := reports.ExportDREExcel(result)
		if err != nil {
			respondError(c, err)
			return
		}
		sendWorkbook(c, "dre", buf)
	}
}

func closingsExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := readReportQuery(c)
		if !ok {
			return
		}
		ctx, span := startSpan(c, "closings export")
		defer span.End()

		buf, err := reports.ExportClosingsReport(ctx, q.Start, q.End, q.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		sendWorkbook(c, "fechamentos", buf)
	}
}

func historyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := page(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		referenceId, err := queryInt(c, "reference_id")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		result, err := models.PaginateHistory(c.Request.Context(), p.Limit, p.After,
			queryString(c, "reference_type"), referenceId, queryString(c, "action_type"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
