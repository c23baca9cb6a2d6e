package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/it-helpdesk/helpdesk-service/api"
	"github.com/it-helpdesk/helpdesk-service/internal/handler"
	"github.com/it-helpdesk/helpdesk-service/internal/middleware"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Deps struct {
	Problems     *handler.ProblemHandler
	Instructions *handler.InstructionHandler
	Admins       *handler.AdminHandler
	Uploads      *handler.UploadHandler

	// AdminGuard закрывает мутации, доступные только администраторам.
	AdminGuard gin.HandlerFunc

	Log         zerolog.Logger
	CORSOrigins string
	MaxUploadMB int64
}

func New(d Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.MaxMultipartMemory = d.MaxUploadMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.UserEmailHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if d.CORSOrigins == "*" || d.CORSOrigins == "" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = strings.Split(d.CORSOrigins, ",")
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v := r.Group("/api")
	{
		v.GET("/problems", d.Problems.List)
		v.GET("/problems/:id", d.Problems.Get)
		v.POST("/problems", d.Problems.Create)
		v.GET("/instructions/:problem_id", d.Instructions.GetByProblem)
		v.GET("/check-admin/:email", d.Admins.CheckAdmin)
		v.GET("/stats", d.Problems.Stats)
		v.POST("/upload", d.Uploads.Upload)
		v.GET("/attachments/:token", d.Uploads.Get)
	}

	adm := v.Group("")
	adm.Use(d.AdminGuard)
	{
		adm.PUT("/problems/:id", d.Problems.Update)
		adm.PUT("/problems/:id/status", d.Problems.UpdateStatus)
		adm.DELETE("/problems/:id", d.Problems.Delete)
		adm.POST("/instructions", d.Instructions.Create)
		adm.DELETE("/instructions/:problem_id", d.Instructions.DeleteByProblem)
		adm.GET("/admins", d.Admins.List)
		adm.POST("/admins", d.Admins.Add)
		adm.DELETE("/admins/:email", d.Admins.Delete)
	}

	return r
}
