package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"donor-batch-ledger/internal/repository"
)

// CRUD serves the create, read, update and delete routes of one entity.
// The entity handlers embed it and add their finders.
type CRUD[T any] struct {
	repo   repository.Repository[T]
	entity string
	setID  func(*T, int64)
	log    zerolog.Logger
}

func newCRUD[T any](repo repository.Repository[T], entity string, setID func(*T, int64), log zerolog.Logger) *CRUD[T] {
	return &CRUD[T]{repo: repo, entity: entity, setID: setID, log: log}
}

func (h *CRUD[T]) Create(c *gin.Context) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.setID(&v, 0)
	created, err := h.repo.Insert(c.Request.Context(), v)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": h.entity + " created", h.entity: created})
}

func (h *CRUD[T]) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	v, err := h.repo.GetOne(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": h.entity + " not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *CRUD[T]) List(c *gin.Context) {
	items, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Update replaces every writable column of the record with the payload.
func (h *CRUD[T]) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.setID(&v, id)
	ctx := c.Request.Context()
	if err := h.repo.Update(ctx, v); err != nil {
		respondError(c, h.log, err)
		return
	}
	updated, err := h.repo.GetOne(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.entity + " updated", h.entity: updated})
}

func (h *CRUD[T]) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteOne(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.entity + " deleted"})
}
