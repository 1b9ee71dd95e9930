package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/stl_backend/pkg/config"
)

// identity headers read by Auth and RequestID; always allowed so a
// restrictive allow_headers setting cannot strip them
var apiHeaders = []string{"Content-Type", "X-User-Id", "X-User-Name", RequestIDHeader}

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
func CORS(cfg *config.CORSConfig) app.HandlerFunc {
	allowOrigin := "*"
	allowMethods := "GET,POST,PUT,DELETE,OPTIONS"
	allowHeaders := "*"
	allowCredentials := "false"

	if cfg != nil {
		if cfg.AllowOrigin != "" {
			allowOrigin = cfg.AllowOrigin
		}
		if cfg.AllowMethods != "" {
			allowMethods = cfg.AllowMethods
		}
		if cfg.AllowHeaders != "" {
			allowHeaders = cfg.AllowHeaders
		}
		if cfg.AllowCredentials {
			allowCredentials = "true"
		}
	}
	if allowHeaders != "*" {
		allowHeaders = mergeHeaderList(allowHeaders, apiHeaders)
	}

	return func(ctx context.Context, c *app.RequestContext) {
		h := &c.Response.Header
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Credentials", allowCredentials)
		h.Set("Access-Control-Expose-Headers", RequestIDHeader+",Content-Disposition")

		if string(c.Request.Method()) == consts.MethodOptions {
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}

		c.Next(ctx)
	}
}

// mergeHeaderList appends the names in extra missing from the comma separated list.
func mergeHeaderList(list string, extra []string) string {
	seen := map[string]bool{}
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
	}
	for _, name := range extra {
		if !seen[strings.ToLower(name)] {
			seen[strings.ToLower(name)] = true
			out = append(out, name)
		}
	}
	return strings.Join(out, ",")
}
