package handlers

import (
	"net/http"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"
	"github.com/KRaymonne/pro/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	log *zap.Logger
}

func NewAuthHandler(log *zap.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

type registerRequest struct {
	LastName    string `json:"nom" binding:"required"`
	FirstName   string `json:"prenom" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"motDePasse" binding:"required"`
	Role        string `json:"role"`
	Class       string `json:"classe"`
	Institution string `json:"etablissement"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("données d'inscription invalides"))
		return
	}

	if !utils.IsValidEmail(req.Email) {
		respondError(c, h.log, apperr.Validation("adresse email invalide"))
		return
	}
	if !utils.IsAcceptablePassword(req.Password) {
		respondError(c, h.log, apperr.Validation("le mot de passe doit contenir au moins 6 caractères"))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	switch role {
	case models.RoleStudent, models.RoleTeacher, models.RoleParent:
	default:
		// Admin accounts are provisioned out of band.
		respondError(c, h.log, apperr.Validation("rôle invalide"))
		return
	}

	user := &models.User{
		LastName:    req.LastName,
		FirstName:   req.FirstName,
		Email:       req.Email,
		Role:        role,
		Class:       req.Class,
		Institution: req.Institution,
	}
	if err := user.SetPassword(req.Password); err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := repository.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, h.log, err)
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID)
	if err := session.Save(); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("User registered", zap.Uint("userID", user.ID), zap.String("role", user.Role))
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"motDePasse" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperr.Validation("email et mot de passe requis"))
		return
	}

	user, err := repository.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		// Same answer whether the account exists or not.
		c.JSON(http.StatusUnauthorized, gin.H{"message": "email ou mot de passe incorrect"})
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID)
	if err := session.Save(); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "déconnexion réussie"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
