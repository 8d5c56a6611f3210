package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oncallboard/oncallboard/internal/types"
)

// NewRouter builds the development proxy: requests under /api are
// forwarded to the backend origin with the /api prefix stripped, the way
// the production front-end's dev server rewrites them.
func NewRouter(target *url.URL) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rp := httputil.NewSingleHostReverseProxy(target)
	director := rp.Director
	rp.Director = func(req *http.Request) {
		director(req)
		req.URL.Path = rewritePath(req.URL.Path)
		req.Host = target.Host
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Any("/api/*path", func(c *gin.Context) {
		rp.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

func rewritePath(path string) string {
	rewritten := strings.TrimPrefix(path, "/api")
	if rewritten == "" {
		return "/"
	}
	return rewritten
}
