package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"photo-hunt/internal/blob"
	"photo-hunt/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type submitPhotoRequest struct {
	SessionID      uuid.UUID `json:"sessionId" binding:"required"`
	PhotographerID uuid.UUID `json:"photographerId" binding:"required"`
	TargetPlayerID uuid.UUID `json:"targetPlayerId" binding:"required"`
	ImageData      string    `json:"imageData" binding:"required"`
	Filename       string    `json:"filename"`
}

type reviewPhotoRequest struct {
	Action     string    `json:"action" binding:"required,decision"`
	ReviewerID uuid.UUID `json:"reviewerId" binding:"required"`
}

var photoMessages = bindMessages{
	"SessionID":      {"required": "sessionId is required"},
	"PhotographerID": {"required": "photographerId is required"},
	"TargetPlayerID": {"required": "targetPlayerId is required"},
	"ImageData":      {"required": "imageData is required"},
	"Action": {
		"required": "action is required",
		"decision": "action must be approve or reject",
	},
	"ReviewerID": {"required": "reviewerId is required"},
}

const multipartOverhead = 1 << 20

func (s *Server) handleListPhotos(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("photographerId"); raw != "" {
		photographerID, ok := queryID(c, "photographerId")
		if !ok {
			return
		}
		photos, err := s.photos.ListByPhotographer(ctx, photographerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, photos)
		return
	}

	sessionID, ok := queryID(c, "sessionId")
	if !ok {
		return
	}
	status := game.StatusPending
	if raw := c.Query("status"); raw != "" {
		parsed, err := game.ParseStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		status = parsed
	}
	if status != game.StatusPending {
		writeError(c, http.StatusBadRequest, "only pending photos can be listed by session")
		return
	}
	photos, err := s.photos.ListPending(ctx, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photos)
}

func (s *Server) handleSubmitPhoto(c *gin.Context) {
	limit := int64(s.cfg.MaxPhotoBytes)*4/3 + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	var (
		sub game.Submission
		ok  bool
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		sub, ok = s.readMultipartSubmission(c)
	} else {
		sub, ok = s.readJSONSubmission(c)
	}
	if !ok {
		return
	}

	ctx := c.Request.Context()
	for _, id := range []uuid.UUID{sub.PhotographerID, sub.TargetPlayerID} {
		if _, err := s.players.Get(ctx, id); err != nil {
			respondError(c, err)
			return
		}
	}
	if !s.limiter.Allow(sub.PhotographerID.String()) {
		s.metrics.SubmitRateLimited()
		writeError(c, http.StatusTooManyRequests, "too many photos, try again shortly")
		return
	}
	photo, err := s.photos.Submit(ctx, sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (s *Server) readJSONSubmission(c *gin.Context) (game.Submission, bool) {
	var req submitPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if tooLarge(err) {
			writeError(c, http.StatusRequestEntityTooLarge, "photo is too large")
			return game.Submission{}, false
		}
		writeError(c, http.StatusBadRequest, resolveBindError(err, photoMessages, "invalid photo"))
		return game.Submission{}, false
	}
	image, err := decodeImageData(req.ImageData)
	if err != nil {
		writeError(c, http.StatusBadRequest, "imageData must be a base64 data URL")
		return game.Submission{}, false
	}
	return game.Submission{
		SessionID:      req.SessionID,
		PhotographerID: req.PhotographerID,
		TargetPlayerID: req.TargetPlayerID,
		Image:          image,
		Filename:       req.Filename,
	}, true
}

func (s *Server) readMultipartSubmission(c *gin.Context) (game.Submission, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			writeError(c, http.StatusRequestEntityTooLarge, "photo is too large")
		} else {
			writeError(c, http.StatusBadRequest, "file is required")
		}
		return game.Submission{}, false
	}
	sub := game.Submission{Filename: header.Filename}
	fields := []struct {
		name string
		dest *uuid.UUID
	}{
		{"sessionId", &sub.SessionID},
		{"photographerId", &sub.PhotographerID},
		{"targetPlayerId", &sub.TargetPlayerID},
	}
	for _, field := range fields {
		id, err := uuid.Parse(c.PostForm(field.name))
		if err != nil {
			writeError(c, http.StatusBadRequest, field.name+" must be a uuid")
			return game.Submission{}, false
		}
		*field.dest = id
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "file could not be read")
		return game.Submission{}, false
	}
	defer file.Close()
	sub.Image, err = io.ReadAll(io.LimitReader(file, int64(s.cfg.MaxPhotoBytes)+1))
	if err != nil {
		writeError(c, http.StatusBadRequest, "file could not be read")
		return game.Submission{}, false
	}
	return sub, true
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (s *Server) handleGetPhoto(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	photo, err := s.photos.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}

func (s *Server) handleReviewPhoto(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req reviewPhotoRequest
	if !bindJSON(c, &req, photoMessages, "invalid review") {
		return
	}
	ctx := c.Request.Context()
	photo, err := s.photos.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, ok := s.requireAdmin(c, req.ReviewerID, photo.SessionID); !ok {
		return
	}
	if _, err := s.photos.Review(ctx, id, req.ReviewerID, game.Decision(req.Action)); err != nil {
		respondError(c, err)
		return
	}
	photo, err = s.photos.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}

func (s *Server) handleGetBlob(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	object, err := s.blobs.Get(c.Request.Context(), key)
	if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
		writeError(c, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, object.ContentType, object.Data)
}
