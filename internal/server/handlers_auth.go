package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buddyapp/buddy/internal/core"
	"github.com/buddyapp/buddy/internal/domain"
)

type registerPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Tipo     string `json:"tipo"`
	Bio      string `json:"bio"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tipo, err := domain.ParseAccountType(payload.Tipo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := core.RegisterFields{
		Nombre:   payload.Nombre,
		Apellido: payload.Apellido,
		Tipo:     tipo,
		Bio:      payload.Bio,
	}
	sess, err := s.provider.SignUp(c.Request.Context(), payload.Email, payload.Password, fields)
	if err != nil && sess == nil {
		writeError(c, err)
		return
	}

	out := gin.H{"uid": sess.UID, "email": sess.Email}
	// Partial success: the account exists but the profile write failed.
	// The session stands; the client should retry the profile save.
	if err != nil {
		out["warning"] = err.Error()
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := s.provider.SignIn(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": sess.UID, "email": sess.Email})
}

func (s *Server) logout(c *gin.Context) {
	s.provider.SignOut()
	c.JSON(http.StatusOK, gin.H{"signed_in": false})
}
