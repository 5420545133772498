package backup

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/pkg/response"
	"go.uber.org/zap"
)

const maxImportSize = 64 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminMW ...gin.HandlerFunc) {
	g := rg.Group("/backup", adminMW...)
	g.GET("", h.list)
	g.POST("/export", h.export)
	g.POST("/import", h.importArchive)
	g.GET("/:filename", h.download)
}

// list GET /backup
func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.svc.List())
}

// export POST /backup/export?upload=s3
func (h *Handler) export(c *gin.Context) {
	upload := c.Query("upload") == "s3"
	artifact, err := h.svc.Export(c.Request.Context(), upload)
	if err != nil {
		h.svc.logger.Warn("backup failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	if upload {
		response.OK(c, artifact)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Data(http.StatusOK, "application/zip", artifact.Buffer.Bytes())
}

// download GET /backup/:filename
func (h *Handler) download(c *gin.Context) {
	data, err := h.svc.Open(c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, c.Param("filename")))
	c.Data(http.StatusOK, "application/zip", data)
}

// importArchive POST /backup/import
func (h *Handler) importArchive(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fh.Size > maxImportSize {
		response.BadRequest(c, "archive is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	n, err := h.svc.Import(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"imported": n})
}
