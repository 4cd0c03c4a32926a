package handlers

import (
	"fmt"
	"net/http"

	"agrihub/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bind(c, &input) {
		return
	}
	if !isJSON(c) {
		input.IsFarmer = checkbox(c, "is_farmer")
	}

	user, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	message := fmt.Sprintf("Welcome to AgriHub, %s! Please log in to shop.", user.Username)
	if input.IsFarmer {
		message = fmt.Sprintf("Welcome, Farmer %s! Your selling profile has been created.", user.Username)
	}
	h.redirect(c, http.StatusCreated, redirectLogin, message, gin.H{"user": user})
}

func (h *APIHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username"`
		Password string `form:"password" json:"password"`
	}
	if !bind(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
		"redirect":   redirectHome,
	})
}

func (h *APIHandler) Logout(c *gin.Context) {
	session := mustSession(c)
	if err := h.sessions.Logout(c.Request.Context(), session.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": redirectHome, "message": "You have been logged out."})
}

func (h *APIHandler) ChangePassword(c *gin.Context) {
	var input services.PasswordChangeInput
	if !bind(c, &input) {
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), mustSession(c).UserID, input); err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectProfile, "Your password was successfully updated!", nil)
}

func (h *APIHandler) Profile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), mustSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *APIHandler) UpdateFarmProfile(c *gin.Context) {
	var input services.FarmerProfileInput
	if !bind(c, &input) {
		return
	}

	profile, err := h.users.UpdateFarmerProfile(c.Request.Context(), mustSession(c).UserID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectProfile, "Farm profile updated successfully.", gin.H{"farmer_profile": profile})
}

func (h *APIHandler) AddAddress(c *gin.Context) {
	var input services.AddressInput
	if !bind(c, &input) {
		return
	}

	address, err := h.address.Add(c.Request.Context(), mustSession(c).UserID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusCreated, redirectProfile, "Delivery address added successfully.", gin.H{"address": address})
}

func (h *APIHandler) RemoveAddress(c *gin.Context) {
	id, ok := idParam(c, "id", "address")
	if !ok {
		return
	}

	if err := h.address.Remove(c.Request.Context(), mustSession(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectProfile, "Delivery address removed successfully.", nil)
}

// Messages drains the caller's pending flash messages.
func (h *APIHandler) Messages(c *gin.Context) {
	messages, err := h.sessions.PopFlashes(c.Request.Context(), mustSession(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
