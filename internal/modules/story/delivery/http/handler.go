package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/modules/story/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/response"
)

type StoryHandler struct {
	service service.StoryService
}

func NewStoryHandler(service service.StoryService) *StoryHandler {
	return &StoryHandler{service: service}
}

func (h *StoryHandler) CreateStory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "story image is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "could not read uploaded image"))
		return
	}
	defer file.Close()

	story, err := h.service.CreateStory(c.Request.Context(), userID, file, fileHeader.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "story published", story)
}

func (h *StoryHandler) ListStories(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stories, err := h.service.ListActive(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "stories fetched", stories)
}

func (h *StoryHandler) ViewStory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid story id"))
		return
	}

	if err := h.service.ViewStory(c.Request.Context(), userID, storyID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "story viewed", nil)
}

func (h *StoryHandler) DeleteStory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid story id"))
		return
	}

	if err := h.service.DeleteStory(c.Request.Context(), userID, storyID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "story deleted", nil)
}
