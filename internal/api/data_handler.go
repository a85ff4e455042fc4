package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"promptpilot-backend/internal/core"
	"promptpilot-backend/internal/middleware"
)

// DataHandler exposes the profile/document store proxy over REST. Every
// route is behind the auth middleware; the uid always comes from the
// verified token, never from the request.
type DataHandler struct {
	profileService  core.ProfileService
	documentService core.DocumentService
	usageService    core.UsageService
	logger          *zap.Logger
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(ps core.ProfileService, ds core.DocumentService, us core.UsageService, logger *zap.Logger) *DataHandler {
	return &DataHandler{profileService: ps, documentService: ds, usageService: us, logger: logger}
}

// callerUID extracts the verified uid, answering 401 when the middleware
// did not attach one.
func (h *DataHandler) callerUID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.ContextUserID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, failure(CodeUserNotAuthenticated, "User is not authenticated"))
		return "", false
	}
	return uid, true
}

// bindObjectBody enforces the write-path contract: the body must be a
// non-null JSON object, rejected at 400 before any store access.
func (h *DataHandler) bindObjectBody(c *gin.Context) (map[string]interface{}, bool) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, failure(CodeInvalidBody, "Request body must be a JSON object"))
		return nil, false
	}
	if fields == nil {
		c.JSON(http.StatusBadRequest, failure(CodeInvalidBody, "Request body must be a non-null JSON object"))
		return nil, false
	}
	return fields, true
}

// GetProfile handles GET /api/data/profile.
func (h *DataHandler) GetProfile(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, core.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, failure(CodeProfileNotFound, "Profile not found"))
			return
		}
		h.respondInternal(c, "get profile", err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Success: true, Profile: profile})
}

// SetProfile handles PUT /api/data/profile (upsert merge).
func (h *DataHandler) SetProfile(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}
	fields, ok := h.bindObjectBody(c)
	if !ok {
		return
	}

	if err := h.profileService.Set(c.Request.Context(), uid, fields); err != nil {
		h.respondInternal(c, "set profile", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Profile updated"})
}

// DeleteProfile handles DELETE /api/data/profile.
func (h *DataHandler) DeleteProfile(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}

	if err := h.profileService.Delete(c.Request.Context(), uid); err != nil {
		if errors.Is(err, core.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, failure(CodeProfileNotFound, "Profile not found"))
			return
		}
		h.respondInternal(c, "delete profile", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Profile deleted"})
}

// ListCollection handles GET /api/data/collections/:name.
func (h *DataHandler) ListCollection(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}
	name := c.Param("name")

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, failure(CodeInvalidBody, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	items, err := h.documentService.List(c.Request.Context(), uid, name, limit)
	if err != nil {
		h.respondInternal(c, "list collection", err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Success: true, Items: items, Count: len(items)})
}

// AddItem handles POST /api/data/collections/:name.
func (h *DataHandler) AddItem(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}
	fields, ok := h.bindObjectBody(c)
	if !ok {
		return
	}

	item, err := h.documentService.Add(c.Request.Context(), uid, c.Param("name"), fields)
	if err != nil {
		h.respondInternal(c, "add item", err)
		return
	}

	c.JSON(http.StatusCreated, ItemResponse{Success: true, Item: item})
}

// UpdateItem handles PUT /api/data/collections/:name/:id.
func (h *DataHandler) UpdateItem(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}
	fields, ok := h.bindObjectBody(c)
	if !ok {
		return
	}

	err := h.documentService.Update(c.Request.Context(), uid, c.Param("name"), c.Param("id"), fields)
	if err != nil {
		if errors.Is(err, core.ErrDocNotFound) {
			c.JSON(http.StatusNotFound, failure(CodeDocNotFound, "Document not found"))
			return
		}
		h.respondInternal(c, "update item", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Document updated"})
}

// DeleteItem handles DELETE /api/data/collections/:name/:id.
func (h *DataHandler) DeleteItem(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}

	err := h.documentService.Delete(c.Request.Context(), uid, c.Param("name"), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrDocNotFound) {
			c.JSON(http.StatusNotFound, failure(CodeDocNotFound, "Document not found"))
			return
		}
		h.respondInternal(c, "delete item", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Document deleted"})
}

// GetUsage handles GET /api/data/usage.
func (h *DataHandler) GetUsage(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}

	usage, err := h.usageService.Get(c.Request.Context(), uid)
	if err != nil {
		h.respondInternal(c, "get usage", err)
		return
	}

	c.JSON(http.StatusOK, UsageResponse{Success: true, Usage: usage})
}

// RecordOptimization handles POST /api/data/usage/optimizations.
func (h *DataHandler) RecordOptimization(c *gin.Context) {
	uid, ok := h.callerUID(c)
	if !ok {
		return
	}

	count, err := h.usageService.RecordOptimization(c.Request.Context(), uid)
	if err != nil {
		h.respondInternal(c, "record optimization", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "dailyOptimizationCount": count})
}

func (h *DataHandler) respondInternal(c *gin.Context, op string, err error) {
	if h.logger != nil {
		h.logger.Error("Data proxy operation failed", zap.String("op", op), zap.Error(err))
	}
	c.JSON(http.StatusInternalServerError, failure(CodeInternalError, "Internal server error"))
}
