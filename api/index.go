package handler

import (
	"net/http"

	"github.com/arnavshah/shiftboard/pkg/config"
	"github.com/arnavshah/shiftboard/pkg/handlers"
	"github.com/arnavshah/shiftboard/pkg/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	r       *gin.Engine
	initErr error
)

func init() {
	cfg, err := config.Load(nil, "")
	if err != nil {
		initErr = err
		return
	}
	// serverless logs go to stdout as JSON
	logger := logging.Must(logging.Options{Level: cfg.Log.Level, Format: "json"})

	gin.SetMode(gin.ReleaseMode)
	cfg.Server.GinMode = gin.ReleaseMode
	r, initErr = handlers.Setup(cfg, logger)
	if initErr != nil {
		logger.Error("could not initialize handler", zap.Error(initErr))
	}
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		http.Error(w, `{"error":"server misconfigured"}`, http.StatusInternalServerError)
		return
	}
	r.ServeHTTP(w, req)
}
