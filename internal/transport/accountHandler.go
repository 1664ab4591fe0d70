package transport

import (
	"net/http"
	"strconv"

	"github.com/akulinichev/reminderhub/internal/entity"
	"github.com/akulinichev/reminderhub/internal/service"
	"github.com/akulinichev/reminderhub/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) GetAccounts(c *gin.Context) {
	var accounts []*entity.Account
	var err error

	if c.GetBool(middleware.IsAdminKey) {
		accounts, err = h.accountService.GetAllAccounts(c.Request.Context())
	} else {
		ownerID := c.GetString(middleware.OwnerIDKey)
		if ownerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		accounts, err = h.accountService.GetAccountsByOwner(c.Request.Context(), ownerID)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// VisitAccount resets the account's reminder cycle by stamping the visit.
func (h *AccountHandler) VisitAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	if err := h.accountService.VisitAccount(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
