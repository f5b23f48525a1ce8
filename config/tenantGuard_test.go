package config

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/finance_backend/appctx"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

type guardedRow struct {
	ID     int `gorm:"primary_key"`
	BaseId string
	Name   string
}

func TestExprHasBaseID(t *testing.T) {
	cases := []struct {
		name string
		expr clause.Expression
		want bool
	}{
		{"eq column", clause.Eq{Column: clause.Column{Name: "base_id"}, Value: "b"}, true},
		{"eq qualified string", clause.Eq{Column: "stores.base_id", Value: "b"}, true},
		{"in", clause.IN{Column: "base_id", Values: []any{"a", "b"}}, true},
		{"raw sql", clause.Expr{SQL: "BASE_ID = ? AND date = ?"}, true},
		{"nested and", clause.AndConditions{Exprs: []clause.Expression{clause.Eq{Column: "name"}, clause.Eq{Column: "base_id"}}}, true},
		{"other column", clause.Eq{Column: clause.Column{Name: "store_id"}, Value: 1}, false},
		{"database column suffix only", clause.Eq{Column: "database_id"}, false},
	}
	for _, tc := range cases {
		if got := exprHasBaseID(tc.expr); got != tc.want {
			t.Fatalf("%s: exprHasBaseID = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTenantScope(t *testing.T) {
	ctx := appctx.Set(context.Background(), appctx.ContextKeyBaseId, "base-a")
	if id, ok := appctx.TenantScope(ctx); !ok || id != "base-a" {
		t.Fatalf("TenantScope = %q, %v", id, ok)
	}
	if _, ok := appctx.TenantScope(appctx.Set(ctx, appctx.ContextKeySkipTenantScope, true)); ok {
		t.Fatalf("skip flag must disable scoping")
	}
	if _, ok := appctx.TenantScope(appctx.Set(ctx, appctx.ContextKeyIsAdmin, true)); !ok {
		t.Fatalf("admins with a selected base stay scoped")
	}
	if _, ok := appctx.TenantScope(context.Background()); ok {
		t.Fatalf("no base selected must not scope")
	}
}

func TestTenantGuardScopesQueriesUpdatesAndDeletes(t *testing.T) {
	conn, err := OpenDatabase(sqlite.Open("file:tenant_guard?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&guardedRow{}))

	internal := appctx.Set(context.Background(), appctx.ContextKeySkipTenantScope, true)
	require.NoError(t, conn.WithContext(internal).Create(&[]guardedRow{
		{BaseId: "a", Name: "Loja A1"},
		{BaseId: "a", Name: "Loja A2"},
		{BaseId: "b", Name: "Loja B1"},
	}).Error)

	baseA := appctx.Set(context.Background(), appctx.ContextKeyBaseId, "a")
	var rows []guardedRow
	require.NoError(t, conn.WithContext(baseA).Find(&rows).Error)
	require.Len(t, rows, 2)

	var count int64
	require.NoError(t, conn.WithContext(baseA).Model(&guardedRow{}).Where("name = ?", "Loja B1").Count(&count).Error)
	require.Zero(t, count)

	res := conn.WithContext(baseA).Model(&guardedRow{}).Where("name <> ?", "").Update("name", "renamed")
	require.NoError(t, res.Error)
	require.EqualValues(t, 2, res.RowsAffected)

	res = conn.WithContext(baseA).Where("1 = 1").Delete(&guardedRow{})
	require.NoError(t, res.Error)
	require.EqualValues(t, 2, res.RowsAffected)

	require.NoError(t, conn.WithContext(internal).Model(&guardedRow{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
