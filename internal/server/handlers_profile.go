package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buddyapp/buddy/internal/domain"
)

type profilePayload struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Tipo     string `json:"tipo"`
	Bio      string `json:"bio"`
}

func (s *Server) getProfile(c *gin.Context) {
	sess, err := s.provider.ActiveSession()
	if err != nil {
		writeError(c, err)
		return
	}

	profile, err := s.profiles.Get(c.Request.Context(), sess, sess.UID)
	if err != nil {
		writeError(c, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// putProfile updates the editable fields. The email is immutable: it is
// never part of the write regardless of what the payload carries.
func (s *Server) putProfile(c *gin.Context) {
	sess, err := s.provider.ActiveSession()
	if err != nil {
		writeError(c, err)
		return
	}

	var payload profilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tipo, err := domain.ParseAccountType(payload.Tipo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := &domain.Profile{
		UID:      sess.UID,
		Nombre:   payload.Nombre,
		Apellido: payload.Apellido,
		Email:    sess.Email,
		Tipo:     tipo,
		Bio:      payload.Bio,
	}
	if err := validate.Struct(profile); err != nil {
		writeError(c, err)
		return
	}
	if err := s.profiles.Save(c.Request.Context(), sess, profile); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
