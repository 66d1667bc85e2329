package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"framex/internal/domain"
	"framex/internal/infrastructure/logger"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (s *Server) enqueueVideo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing file upload"})
		return
	}

	fps := 1
	if raw := c.DefaultQuery("fps", c.PostForm("fps")); raw != "" {
		fps, err = strconv.Atoi(raw)
		if err != nil || fps <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "fps must be a positive integer"})
			return
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unreadable file upload"})
		return
	}
	defer f.Close()

	jobID, err := s.enqueue.Enqueue(c.Request.Context(), currentUser(c), f, fileHeader.Filename, fps)
	if err != nil {
		logger.Error.Printf("enqueue failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to enqueue video"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "queued"})
}

func (s *Server) getStatus(c *gin.Context) {
	view, err := s.queries.GetJobStatus(c.Request.Context(), c.Param("job_id"), currentUser(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Process not found"})
			return
		}
		logger.Error.Printf("get job status failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load job"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) listJobs(c *gin.Context) {
	views, err := s.queries.ListJobsByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		logger.Error.Printf("list jobs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) download(c *gin.Context) {
	view, err := s.queries.GetJobStatus(c.Request.Context(), c.Param("job_id"), currentUser(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Process not found"})
			return
		}
		logger.Error.Printf("download lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load job"})
		return
	}

	if view.ArtifactRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ZIP not ready"})
		return
	}

	path := s.storage.ResolvePath(view.ArtifactRef)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Artifact missing"})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
