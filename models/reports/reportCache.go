package reports

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/sirupsen/logrus"
)

// cached report names, also the key prefixes
const (
	reportDRE             = "DRE"
	reportCategorySummary = "CategorySummary"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	baseId, _ := utils.GetBaseIdFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"field":          "SlowReport",
		"report":         name,
		"ms":             d.Milliseconds(),
		"base_id":        baseId,
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow report")
}

func reportCacheKey(name string, baseId string, parts ...any) string {
	key := name + ":" + baseId
	for _, p := range parts {
		key += ":" + fmt.Sprint(p)
	}
	return key
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	if !reportCacheEnabled() {
		return false, nil
	}
	return config.GetRedisObject(key, dest)
}

func cacheSet(key string, obj any) error {
	if !reportCacheEnabled() {
		return nil
	}
	return config.SetRedisObject(key, obj, reportCacheTTL())
}

// InvalidateBaseReports drops every cached report of a base.
func InvalidateBaseReports(baseId string) error {
	if baseId == "" {
		return nil
	}
	for _, name := range []string{reportDRE, reportCategorySummary} {
		if err := config.RemoveRedisPattern(name + ":" + baseId + ":*"); err != nil {
			return err
		}
	}
	return nil
}
