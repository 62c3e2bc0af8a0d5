package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	applog "notesfrais/internal/log"
)

// newUploadsProxy forwards receipt downloads to the upstream, which serves
// them under the same path. The page session cookie never leaves the host;
// auth, when set, replaces it.
func newUploadsProxy(upstream *url.URL, auth string, logger *applog.Logger) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.Out.Host = upstream.Host
			pr.Out.Header.Del("Cookie")
			if auth != "" {
				pr.Out.Header.Set("Cookie", auth)
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Del("Set-Cookie")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			applog.FromContext(r.Context(), logger).ErrorContext(r.Context(), "Receipt proxy failed",
				applog.FieldPath, r.URL.Path,
				applog.FieldError, err)
			http.Error(w, "Justificatif indisponible", http.StatusBadGateway)
		},
	}
}
