package handler

import (
	"strconv"

	"registry-web/internal/repository"
	"registry-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationRepo *repository.NotificationRepository
}

func NewNotificationHandler(notificationRepo *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
	}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	notifications, total, err := h.notificationRepo.ListByUser(userID, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve notifications", err)
	}

	unread, err := h.notificationRepo.UnreadCount(userID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count notifications", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Notifications retrieved successfully", fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
		"pagination":    pagination,
	}, pagination)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid notification ID", err)
	}

	if err := h.notificationRepo.MarkRead(id, userID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark notification read", err)
	}

	return utils.SuccessResponse(c, "Notification marked read", nil)
}
