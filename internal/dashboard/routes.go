package dashboard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opticnet/fiberplan/internal/deadline"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, eng *deadline.Engine) {
	router.GET("/healthz", handleHealth(db))

	api := router.Group("/api")
	api.GET("/projects", handleProjectList(db, eng))
	api.GET("/projects/:id", handleProjectDetail(db, eng))
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleProjectList(db *gorm.DB, eng *deadline.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ProjectSummary(db, eng)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": rows})
	}
}

func handleProjectDetail(db *gorm.DB, eng *deadline.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := ProjectDetail(db, eng, c.Param("id"))
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}
