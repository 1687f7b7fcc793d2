package handlers

import (
	"fmt"
	"net/http"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/errs"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DownloadVideoRequest is the body of POST /download-video.
type DownloadVideoRequest struct {
	ClassName string `json:"className"`
}

// DownloadVideo fetches the video for a class from upstream, persists it in
// the local store and returns its public URL. The response shapes on this
// endpoint are load-bearing for existing UI clients and must not change.
func (h *Handlers) DownloadVideo(c *gin.Context) {
	var req DownloadVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassName == "" {
		log.Warnf("DownloadVideo: Missing or invalid class name in request body.")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class name is required"})
		return
	}

	log.Infof("Downloading video for class: %s", req.ClassName)

	asset, err := h.Gateway.FetchAsset(c.Request.Context(), req.ClassName)
	if err != nil {
		switch errs.KindOf(err) {
		case errs.KindNotFound, errs.KindUpstream:
			// Surface the upstream's own status code, as the original
			// proxy did.
			status := errs.StatusOf(err)
			if status == 0 {
				status = http.StatusBadGateway
			}
			log.Errorf("DownloadVideo: upstream miss for class %s: %v", req.ClassName, err)
			c.JSON(status, gin.H{"error": fmt.Sprintf("Video not found for class: %s", req.ClassName)})
		default:
			log.Errorf("DownloadVideo: failed for class %s: %v", req.ClassName, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to download video",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"videoUrl":  asset.PublicURL,
		"className": asset.Key,
		"filename":  asset.FileName,
		"message":   fmt.Sprintf("Video downloaded and saved as %s", asset.FileName),
	})
}

// ListVideos surfaces the upstream listing unchanged.
func (h *Handlers) ListVideos(c *gin.Context) {
	list, err := h.Gateway.ListAvailable(c.Request.Context())
	if err != nil {
		log.Errorf("ListVideos: failed to list upstream videos: %v", err)
		status := http.StatusBadGateway
		if errs.Is(err, errs.KindTimeout) {
			status = http.StatusGatewayTimeout
		}
		utils.ResponseWithError(c, status, "Failed to list videos", err.Error())
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Videos retrieved successfully", list)
}

// CheckVideoExists is the advisory pre-flight probe. It always answers 200
// with a boolean; failures upstream read as absent.
func (h *Handlers) CheckVideoExists(c *gin.Context) {
	className := c.Param("className")
	exists := h.Gateway.CheckExists(c.Request.Context(), className)
	utils.ResponseWithSuccess(c, http.StatusOK, "Existence check completed", gin.H{
		"className": className,
		"exists":    exists,
	})
}

// OriginalVideoURL returns the direct upstream URL for the unprocessed
// original video; nothing is cached locally for this path.
func (h *Handlers) OriginalVideoURL(c *gin.Context) {
	className := c.Param("className")
	utils.ResponseWithSuccess(c, http.StatusOK, "Original video URL resolved", gin.H{
		"className": className,
		"url":       h.Upstream.OriginalVideoURL(className),
	})
}
