package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/middlewares"
	"github.com/mmdatafocus/finance_backend/models"
	"golang.org/x/sync/errgroup"
)

// transactionView is a listed transaction with its references resolved.
type transactionView struct {
	*models.Transaction
	Category          *models.AllCategory          `json:"category"`
	Store             *models.AllStore             `json:"store,omitempty"`
	PaymentMethod     *models.AllPaymentMethod     `json:"payment_method,omitempty"`
	ClienteFornecedor *models.AllClienteFornecedor `json:"cliente_fornecedor,omitempty"`
}

type transactionEdge struct {
	Node   *transactionView `json:"node"`
	Cursor string           `json:"cursor"`
}

type transactionPage struct {
	Edges    []*transactionEdge `json:"edges"`
	PageInfo *models.PageInfo   `json:"pageInfo"`
}

// resolveTransaction fills the references of one row through the request's loaders.
func resolveTransaction(ctx context.Context, t *models.Transaction) (*transactionView, error) {
	view := &transactionView{Transaction: t}
	var err error
	if view.Category, err = middlewares.GetAllCategory(ctx, t.CategoryId); err != nil {
		return nil, err
	}
	if t.StoreId != nil {
		if view.Store, err = middlewares.GetAllStore(ctx, *t.StoreId); err != nil {
			return nil, err
		}
	}
	if t.PaymentMethodId != nil {
		if view.PaymentMethod, err = middlewares.GetAllPaymentMethod(ctx, *t.PaymentMethodId); err != nil {
			return nil, err
		}
	}
	if t.ClienteFornecedorId != nil {
		if view.ClienteFornecedor, err = middlewares.GetAllClienteFornecedor(ctx, *t.ClienteFornecedorId); err != nil {
			return nil, err
		}
	}
	if t.Documents == nil {
		if t.Documents, err = middlewares.GetTransactionDocuments(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// resolveTransactions resolves rows concurrently so the loaders batch their lookups.
func resolveTransactions(ctx context.Context, rows []*models.Transaction) ([]*transactionView, error) {
	views := make([]*transactionView, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			view, err := resolveTransaction(gctx, row)
			if err != nil {
				return err
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func transactionFilter(c *gin.Context) (models.TransactionFilter, error) {
	var f models.TransactionFilter
	var err error
	if f.StartDate, err = queryDate(c, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(c, "end_date"); err != nil {
		return f, err
	}
	if v := queryString(c, "type"); v != nil {
		t := models.TransactionType(*v)
		f.Type = &t
	}
	if f.CategoryId, err = queryInt(c, "category_id"); err != nil {
		return f, err
	}
	if f.StoreId, err = queryInt(c, "store_id"); err != nil {
		return f, err
	}
	if f.PaymentMethodId, err = queryInt(c, "payment_method_id"); err != nil {
		return f, err
	}
	if f.ClienteFornecedorId, err = queryInt(c, "cliente_fornecedor_id"); err != nil {
		return f, err
	}
	f.Search = queryString(c, "search")
	return f, nil
}

func listTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := transactionFilter(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := page(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		ctx, span := startSpan(c, "list transactions")
		defer span.End()

		conn, err := models.PaginateTransactions(ctx, p.Limit, p.After, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		rows := make([]*models.Transaction, len(conn.Edges))
		for i, edge := range conn.Edges {
			rows[i] = edge.Node
		}
		views, err := resolveTransactions(ctx, rows)
		if err != nil {
			respondError(c, err)
			return
		}
		result := &transactionPage{Edges: make([]*transactionEdge, len(views)), PageInfo: conn.PageInfo}
		for i, view := range views {
			result.Edges[i] = &transactionEdge{Node: view, Cursor: conn.Edges[i].Cursor}
		}
		c.JSON(http.StatusOK, result)
	}
}

func getTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		transaction, err := models.GetTransaction(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		view, err := resolveTransaction(ctx, transaction)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type bulkDeleteRequest struct {
	Date    models.MyDateString `json:"date" binding:"required"`
	StoreId int                 `json:"store_id" binding:"required"`
}

func bulkDeleteTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkDeleteRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, span := startSpan(c, "bulk delete transactions")
		defer span.End()

		count, err := models.BulkDeleteTransactions(ctx, req.Date, req.StoreId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": count})
	}
}

// documentUploadHandler attaches a multipart "file" to a transaction or closing.
func documentUploadHandler(referenceType models.ReferenceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		data, filename, ok := readUpload(c)
		if !ok {
			return
		}
		ctx, span := startSpan(c, "upload document")
		defer span.End()

		document, err := models.UploadAttachment(ctx, referenceType, id, filename, data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, document)
	}
}

type attachDocumentRequest struct {
	DocumentUrl string `json:"document_url" binding:"required"`
}

// documentAttachHandler records an object the client already uploaded.
func documentAttachHandler(referenceType models.ReferenceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req attachDocumentRequest
		if !bindJSON(c, &req) {
			return
		}
		document, err := models.AttachDocument(c.Request.Context(), referenceType, id, req.DocumentUrl)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, document)
	}
}

func listDocumentsHandler(referenceType models.ReferenceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		documents, err := models.GetDocuments(c.Request.Context(), referenceType, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, documents)
	}
}
