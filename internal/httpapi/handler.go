package httpapi

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"lostfound/internal/apperr"
	"lostfound/internal/auth"
	"lostfound/internal/cloudinary"
	"lostfound/internal/items"
	"lostfound/internal/users"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	users  *users.Service
	items  *items.Service
	tokens *auth.Issuer
	cloud  *cloudinary.Client // nil when image storage is not configured
	dev    bool
}

// New creates a handler. dev controls whether internal error detail reaches
// responses.
func New(us *users.Service, is *items.Service, tokens *auth.Issuer, cloud *cloudinary.Client, dev bool) *Handler {
	return &Handler{users: us, items: is, tokens: tokens, cloud: cloud, dev: dev}
}

// writeError maps a domain error onto the HTTP taxonomy. Internal detail
// stays out of responses outside dev.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %s %s: %v", c.Request.Method, c.FullPath(), err)
		msg := "server error"
		if h.dev {
			msg = err.Error()
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		c.JSON(status, gin.H{"error": "validation failed", "errors": verrs})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ---------- Auth ----------

// RegisterUser handles POST /auth/register.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": u})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// ListUsers handles GET /auth/users (admin only).
func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if list == nil {
		list = []users.User{}
	}
	c.JSON(http.StatusOK, list)
}

// DeleteUser handles DELETE /auth/users/:id (admin only).
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted"})
}

// ---------- Lost & Found ----------

// ListItems handles GET /lost-found. Public; supports ?type=lost|found|all.
func (h *Handler) ListItems(c *gin.Context) {
	list, err := h.items.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if list == nil {
		list = []items.Item{}
	}
	c.JSON(http.StatusOK, list)
}

// CreateItem handles POST /lost-found.
func (h *Handler) CreateItem(c *gin.Context) {
	var req items.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	it, err := h.items.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// MarkClaimed handles POST /lost-found/:id/mark-claimed. Reporter or admin.
func (h *Handler) MarkClaimed(c *gin.Context) {
	it, err := h.items.MarkClaimed(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "item marked as claimed",
		"claimed":   true,
		"claimedAt": it.ClaimedAt,
	})
}

// UnmarkClaimed handles POST /lost-found/:id/unmark-claimed. Admin only.
func (h *Handler) UnmarkClaimed(c *gin.Context) {
	if _, err := h.items.UnmarkClaimed(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "item unmarked as claimed",
		"claimed":   false,
		"claimedAt": nil,
	})
}

// DeleteItem handles DELETE /lost-found/:id. Admin only.
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.items.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "item deleted"})
}

// maxUploadBytes caps a single uploaded image. The edge body limit already
// bounds the request; this guards the handler when wired without it.
const maxUploadBytes = 10 << 20

// Upload handles POST /lost-found/upload — uploads a multipart file or a
// base64 data URL to Cloudinary and returns the public URL for use as
// imageUrl when creating a report.
func (h *Handler) Upload(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	var result *cloudinary.UploadResult
	var err error

	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
			return
		}
		if int64(len(data)) > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		result, err = h.cloud.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = h.cloud.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.SecureURL, "bytes": result.Bytes})
}
