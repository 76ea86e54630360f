package server

import (
	"net/http"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/gorilla/mux"
)

const (
	routeRootRedirect   = "root.redirect"
	routePrefixRedirect = "prefix.redirect"
	routeSite           = "site"
)

var readMethods = []string{http.MethodGet, http.MethodHead}

// NewRouter registers the two public routes:
//
//	GET|HEAD /            301 -> <prefix>/<index>
//	GET|HEAD <prefix>/... site, with <prefix> stripped
//
// plus a 301 from <prefix> to <prefix>/. gorilla/mux cleans request paths
// before matching, so "/app/../x" is redirected to "/x" and never reaches site.
func NewRouter(cfg domain.SiteConfig, site http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.Handle("/", permanentRedirect(cfg.IndexURL())).
		Methods(readMethods...).
		Name(routeRootRedirect)

	r.Handle(cfg.Prefix, permanentRedirect(cfg.Prefix+"/")).
		Methods(readMethods...).
		Name(routePrefixRedirect)

	r.PathPrefix(cfg.Prefix + "/").
		Handler(http.StripPrefix(cfg.Prefix, site)).
		Methods(readMethods...).
		Name(routeSite)

	return r
}

func permanentRedirect(target string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", target)
		w.WriteHeader(http.StatusMovedPermanently)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", strings.Join(readMethods, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
