// Package appctx holds the request-scoped values shared by config, utils and models.
// It imports nothing from the module so the tenant guard in config can read them.
package appctx

import "context"

type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyToken         = ContextKey("Token")
	ContextKeyBaseId        = ContextKey("BaseId")
	ContextKeyUsername      = ContextKey("Username") // identity-provider UID
	ContextKeyUserId        = ContextKey("UserId")
	ContextKeyUserName      = ContextKey("UserName")
	ContextKeyCorrelationId = ContextKey("CorrelationId")
	ContextKeyIsAdmin       = ContextKey("IsAdmin")

	// ContextKeySkipTenantScope disables the tenant guard. CLI and workflow code only.
	ContextKeySkipTenantScope = ContextKey("SkipTenantScope")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

func GetBool(ctx context.Context, key ContextKey) bool {
	v, _ := ctx.Value(key).(bool)
	return v
}

func GetInt(ctx context.Context, key ContextKey) (int, bool) {
	v, ok := ctx.Value(key).(int)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// TenantScope returns the client base every tenant-owned query must be limited to.
// scoped is false when no base is selected or the scope was explicitly skipped.
// Admins are scoped like anyone else once a base is selected.
func TenantScope(ctx context.Context) (baseId string, scoped bool) {
	if ctx == nil || GetBool(ctx, ContextKeySkipTenantScope) {
		return "", false
	}
	return GetString(ctx, ContextKeyBaseId)
}
