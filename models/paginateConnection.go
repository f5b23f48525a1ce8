package models

import (
	"fmt"

	"gorm.io/gorm"
)

type Cursor interface {
	GetCursor() string
}

type CompositeCursor interface {
	Cursor
	Identifier
}

type Edge[N Cursor] struct {
	Node   *N     `json:"node"`
	Cursor string `json:"cursor"`
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// FetchPageCompositeCursor pages by (cursorColumn, id). cmpOperator ">" pages ascending, "<" descending.
func FetchPageCompositeCursor[T CompositeCursor](dbCtx *gorm.DB,
	limit int,
	after *string,
	cursorColumn string,
	cmpOperator string,
) ([]Edge[T], *PageInfo, error) {

	limit = normalizeLimit(limit)
	nodes := make([]*T, 0)

	if cmpOperator == ">" {
		dbCtx = dbCtx.Order(cursorColumn + ", id")
	} else {
		cmpOperator = "<"
		dbCtx = dbCtx.Order(cursorColumn + " DESC, id DESC")
	}

	decodedCursor, cursorId := DecodeCompositeCursor(after)
	if decodedCursor != "" {
		arg := cursorArg(decodedCursor)
		dbCtx = dbCtx.Where(
			// [1] = column, [2] = operator
			fmt.Sprintf("(%[1]s %[2]s ? OR (%[1]s = ? AND id %[2]s ?))", cursorColumn, cmpOperator),
			arg, arg, cursorId)
	}

	if err := dbCtx.Limit(limit + 1).Find(&nodes).Error; err != nil {
		return nil, nil, err
	}

	hasNextPage := len(nodes) > limit
	if hasNextPage {
		nodes = nodes[:limit]
	}
	edges := make([]Edge[T], 0, len(nodes))
	for _, node := range nodes {
		edges = append(edges, Edge[T]{
			Node:   node,
			Cursor: EncodeCompositeCursor((*node).GetCursor(), (*node).GetId()),
		})
	}

	pageInfo := PageInfo{HasNextPage: hasNextPage}
	if len(edges) > 0 {
		pageInfo.StartCursor = edges[0].Cursor
		pageInfo.EndCursor = edges[len(edges)-1].Cursor
	}
	return edges, &pageInfo, nil
}
