package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/middlewares"
	"github.com/mmdatafocus/finance_backend/models"
	"golang.org/x/sync/errgroup"
)

type closingItemView struct {
	*models.MovementItem
	MovementType  *models.AllMovementType  `json:"movement_type"`
	PaymentMethod *models.AllPaymentMethod `json:"payment_method,omitempty"`
}

type closingView struct {
	*models.StoreClosing
	Store *models.AllStore   `json:"store"`
	Items []*closingItemView `json:"items"`
}

type closingEdge struct {
	Node   *closingView `json:"node"`
	Cursor string       `json:"cursor"`
}

type closingPage struct {
	Edges    []*closingEdge   `json:"edges"`
	PageInfo *models.PageInfo `json:"pageInfo"`
}

func resolveClosing(ctx context.Context, closing *models.StoreClosing) (*closingView, error) {
	view := &closingView{StoreClosing: closing}
	var err error
	if view.Store, err = middlewares.GetAllStore(ctx, closing.StoreId); err != nil {
		return nil, err
	}
	items := closing.Items
	if items == nil {
		if items, err = middlewares.GetMovementItems(ctx, closing.ID); err != nil {
			return nil, err
		}
	}
	view.Items = make([]*closingItemView, 0, len(items))
	for _, item := range items {
		itemView := &closingItemView{MovementItem: item}
		if itemView.MovementType, err = middlewares.GetAllMovementType(ctx, item.MovementTypeId); err != nil {
			return nil, err
		}
		if item.PaymentMethodId != nil {
			if itemView.PaymentMethod, err = middlewares.GetAllPaymentMethod(ctx, *item.PaymentMethodId); err != nil {
				return nil, err
			}
		}
		view.Items = append(view.Items, itemView)
	}
	if closing.Documents == nil && closing.ID > 0 {
		if closing.Documents, err = middlewares.GetStoreClosingDocuments(ctx, closing.ID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func listClosingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeId, err := queryInt(c, "store_id")
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := page(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		ctx, span := startSpan(c, "list closings")
		defer span.End()

		conn, err := models.PaginateStoreClosings(ctx, p.Limit, p.After, storeId)
		if err != nil {
			respondError(c, err)
			return
		}
		result := &closingPage{Edges: make([]*closingEdge, len(conn.Edges)), PageInfo: conn.PageInfo}
		g, gctx := errgroup.WithContext(ctx)
		for i, edge := range conn.Edges {
			i, edge := i, edge
			g.Go(func() error {
				view, err := resolveClosing(gctx, edge.Node)
				if err != nil {
					return err
				}
				result.Edges[i] = &closingEdge{Node: view, Cursor: edge.Cursor}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getClosingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		closing, err := models.GetStoreClosing(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		view, err := resolveClosing(ctx, closing)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// closingByDateHandler answers 404 when the store has no closing on that date.
func closingByDateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeId, err := queryInt(c, "store_id")
		if err != nil || storeId == nil {
			badRequest(c, "store_id is required")
			return
		}
		date, err := queryDate(c, "date")
		if err != nil || date == nil {
			badRequest(c, "date is required")
			return
		}
		ctx := c.Request.Context()
		closing, err := models.GetStoreClosingByDate(ctx, *storeId, *date)
		if err != nil {
			respondError(c, err)
			return
		}
		if closing == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no closing for this store and date"})
			return
		}
		view, err := resolveClosing(ctx, closing)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func saveClosingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStoreClosing
		if !bindJSON(c, &input) {
			return
		}
		ctx, span := startSpan(c, "save closing")
		defer span.End()

		closing, err := models.SaveStoreClosing(ctx, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, closing)
	}
}

func calculateClosingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStoreClosing
		if !bindJSON(c, &input) {
			return
		}
		preview, err := models.CalculateClosingPreview(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
	}
}
