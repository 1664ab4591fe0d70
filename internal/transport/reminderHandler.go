package transport

import (
	"net/http"

	"github.com/akulinichev/reminderhub/internal/entity"
	"github.com/akulinichev/reminderhub/internal/service"
	"github.com/akulinichev/reminderhub/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReminderHandler struct {
	reminderService service.ReminderService
}

func NewReminderHandler(reminderService service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// CheckReminders returns the due/overdue accounts for the caller. Admins
// see every owner; everyone else only their own. An evaluation failure
// degrades to an empty list so the page always renders; the failure itself
// goes to the error log.
func (h *ReminderHandler) CheckReminders(c *gin.Context) {
	ownerID := c.GetString(middleware.OwnerIDKey)
	isAdmin := c.GetBool(middleware.IsAdminKey)

	var reminders []*entity.AccountReminder
	var err error

	if isAdmin {
		reminders, err = h.reminderService.CheckReminders(c.Request.Context())
	} else {
		if ownerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		reminders, err = h.reminderService.CheckRemindersForOwner(c.Request.Context(), ownerID)
	}

	if err != nil {
		logrus.Errorf("Failed to check reminders: %v", err)
		reminders = []*entity.AccountReminder{}
	}
	if reminders == nil {
		reminders = []*entity.AccountReminder{}
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "count": len(reminders)})
}

// CheckOwnerReminders is the admin variant scoped to an explicit owner.
func (h *ReminderHandler) CheckOwnerReminders(c *gin.Context) {
	if !c.GetBool(middleware.IsAdminKey) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	ownerID := c.Param("owner_id")
	reminders, err := h.reminderService.CheckRemindersForOwner(c.Request.Context(), ownerID)
	if err != nil {
		logrus.Errorf("Failed to check reminders for owner %s: %v", ownerID, err)
		reminders = []*entity.AccountReminder{}
	}
	if reminders == nil {
		reminders = []*entity.AccountReminder{}
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "count": len(reminders)})
}
