package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/auth"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
)

func (h *Handler) handleLoginPage(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if _, err := h.Auth.UserForSession(token); err == nil {
			c.Redirect(http.StatusFound, "/")
			return
		}
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"next": c.Query("next"),
	})
}

func (h *Handler) handleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	remember := c.PostForm("remember") != ""
	next := c.Query("next")
	if next == "" {
		next = c.PostForm("next")
	}

	u, err := h.Auth.Authenticate(username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.Logger.Error("login failed", "username", username, "error", err)
		}
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"error":    "Invalid username or password",
			"username": username,
			"next":     next,
		})
		return
	}

	token, expires, err := h.Auth.StartSession(u.ID, remember)
	if err != nil {
		h.Logger.Error("failed to start session", "username", username, "error", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"error": "Could not start a session, try again",
			"next":  next,
		})
		return
	}
	h.setSession(c, token, expires, remember)
	h.Logger.Info("user logged in", "username", u.Username)
	c.Redirect(http.StatusFound, safeNext(next))
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (h *Handler) handleAPILogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	u, err := h.Auth.Authenticate(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	token, expires, err := h.Auth.StartSession(u.ID, req.Remember)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.setSession(c, token, expires, req.Remember)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "user": u, "expires_at": expires})
}

func (h *Handler) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if err := h.Auth.EndSession(token); err != nil {
			h.Logger.Warn("failed to end session", "error", err)
		}
	}
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/login")
}

// Admin pages

func (h *Handler) handleAdmin(c *gin.Context) {
	users, err := h.Auth.Users()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", h.page(c, "admin", gin.H{"error": err.Error()}))
		return
	}
	c.HTML(http.StatusOK, "admin.html", h.page(c, "admin", gin.H{
		"users":  users,
		"notice": c.Query("notice"),
		"error":  c.Query("error"),
	}))
}

func (h *Handler) handleCreateUserPage(c *gin.Context) {
	c.HTML(http.StatusOK, "create_user.html", h.page(c, "admin", gin.H{
		"role": db.RoleViewer,
	}))
}

func (h *Handler) handleCreateUser(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")
	role := c.DefaultPostForm("role", db.RoleViewer)

	var msg string
	switch {
	case username == "" || password == "":
		msg = "Username and password are required"
	case password != confirm:
		msg = "Passwords do not match"
	case role != db.RoleAdmin && role != db.RoleViewer:
		msg = "Invalid role"
	}
	if msg == "" {
		_, err := h.Auth.CreateUser(username, password, role, currentUser(c).Username)
		if err == nil {
			h.Logger.Info("user created", "username", username, "role", role, "by", currentUser(c).Username)
			c.Redirect(http.StatusFound, "/admin?notice="+url.QueryEscape(fmt.Sprintf("User %q created successfully", username)))
			return
		}
		if errors.Is(err, db.ErrUserExists) {
			msg = "Username already exists"
		} else {
			h.Logger.Error("failed to create user", "username", username, "error", err)
			msg = "Failed to create user"
		}
	}

	c.HTML(http.StatusBadRequest, "create_user.html", h.page(c, "admin", gin.H{
		"error":    msg,
		"username": username,
		"role":     role,
	}))
}

func (h *Handler) handleDeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == currentUser(c).ID {
		c.Redirect(http.StatusFound, "/admin?error="+url.QueryEscape("You cannot delete your own account"))
		return
	}
	if err := h.Auth.DeleteUser(id); err != nil {
		msg := "Failed to delete user"
		if errors.Is(err, db.ErrUserNotFound) {
			msg = "User not found"
		} else {
			h.Logger.Error("failed to delete user", "id", id, "error", err)
		}
		c.Redirect(http.StatusFound, "/admin?error="+url.QueryEscape(msg))
		return
	}
	h.Logger.Info("user deleted", "id", id, "by", currentUser(c).Username)
	c.Redirect(http.StatusFound, "/admin?notice="+url.QueryEscape("User deleted successfully"))
}
