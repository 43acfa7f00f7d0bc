package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/claimflow/internal/attachment"
)

// handleUploadReceipt stores a receipt file and returns the reference
// string that createClaim consumes verbatim. The core never looks at the
// file bytes again.
func (s *Server) handleUploadReceipt(c *gin.Context) {
	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	if err := attachment.ValidateUpload(file.Filename, file.Size); err != nil {
		writeError(c, err)
		return
	}

	name := attachment.NewFileName(file.Filename)
	if err := c.SaveUploadedFile(file, s.uploads.Path(name)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference": attachment.Reference(name),
		"filename":  name,
		"size":      file.Size,
	})
}
