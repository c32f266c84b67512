// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/quillnotes/quill/internal/notes"
)

type createNoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// noteID parses the :id path parameter. A malformed id cannot name any
// existing note, so it reports the same not-found as a missing one.
func noteID(c *gin.Context) (ulid.ULID, bool) {
	id, err := ulid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return ulid.ULID{}, false
	}
	return id, true
}

func (s *Server) handleCreateNote(c *gin.Context) {
	principal, _ := CurrentPrincipal(c)

	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	note, err := s.notes.Create(c.Request.Context(), principal.User.ID, req.Title, req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (s *Server) handleListNotes(c *gin.Context) {
	principal, _ := CurrentPrincipal(c)

	list, err := s.notes.List(c.Request.Context(), principal.User.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if list == nil {
		list = []*notes.Note{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetNote(c *gin.Context) {
	principal, _ := CurrentPrincipal(c)

	id, ok := noteID(c)
	if !ok {
		return
	}

	note, err := s.notes.Get(c.Request.Context(), id, principal.User.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (s *Server) handleUpdateNote(c *gin.Context) {
	principal, _ := CurrentPrincipal(c)

	id, ok := noteID(c)
	if !ok {
		return
	}

	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	note, err := s.notes.Update(c.Request.Context(), id, principal.User.ID, notes.Patch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	principal, _ := CurrentPrincipal(c)

	id, ok := noteID(c)
	if !ok {
		return
	}

	if err := s.notes.Delete(c.Request.Context(), id, principal.User.ID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
