package gateway

import (
	"net/http"

	"github.com/caseif/fs2sbc/common/api"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MustServeLocal serves the files under LocalFileRepo as containers at endpoint.
func MustServeLocal(endpoint string, origins []string) {
	option := api.RouterOption{OriginsAllowed: origins}
	if err := api.Serve(endpoint, routes, option); err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("Failed to serve API")
	}
}

// NewHandler returns the gateway routes as an http.Handler.
func NewHandler() http.Handler {
	return api.NewRouter(routes)
}

func routes(router *gin.Engine) {
	localApi := router.Group("/local")
	localApi.GET("/tree", api.Wrap(getLocalTree))
	localApi.GET("/pack", packLocalPath)
	localApi.GET("/recent", api.Wrap(getRecentPack))
}
