package controllers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/KeremAR/notification-service/metrics"
	"github.com/KeremAR/notification-service/models"
	"github.com/KeremAR/notification-service/utils"
	"github.com/gofiber/fiber/v2"
)

type Store interface {
	GetByUser(ctx context.Context, userId string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userId, id string) (*models.Notification, error)
	Delete(ctx context.Context, userId, id string) error
}

type Publisher interface {
	NotificationRead(notification *models.Notification)
	NotificationDeleted(id, userId string)
}

type NotificationsController struct {
	store     Store
	publisher Publisher
}

func NewNotificationsController(store Store, publisher Publisher) *NotificationsController {
	return &NotificationsController{store: store, publisher: publisher}
}

func RegisterNotificationsController(r *utils.Router, c *NotificationsController) {
	protected := utils.Protected(utils.JwtMiddlewareConfig{
		Subject: "access",
		Scopes:  []string{"basic"},
	})

	r.Get("/health", c.health)
	r.Get("/notifications/:userId", protected, c.getNotifications)
	r.Post("/notifications/:userId/read/:notificationId", protected, c.markRead)
	r.Delete("/notifications/:userId/:notificationId", protected, c.deleteNotification)
}

func (r *NotificationsController) health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func (r *NotificationsController) getNotifications(c *fiber.Ctx) error {
	userId := c.Params("userId")
	if !ownedBy(c, userId) {
		return accessDenied(c)
	}

	notifications, err := r.store.GetByUser(c.Context(), userId)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(notifications)
}

func (r *NotificationsController) markRead(c *fiber.Ctx) error {
	userId := c.Params("userId")
	if !ownedBy(c, userId) {
		return accessDenied(c)
	}

	notification, err := r.store.MarkRead(c.Context(), userId, c.Params("notificationId"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}

		return utils.StandardInternalError(c, err)
	}

	metrics.NotificationsRead.Inc()
	r.publisher.NotificationRead(notification)

	return c.Status(fiber.StatusOK).JSON(notification)
}

func (r *NotificationsController) deleteNotification(c *fiber.Ctx) error {
	userId := c.Params("userId")
	if !ownedBy(c, userId) {
		return accessDenied(c)
	}

	id := c.Params("notificationId")
	if err := r.store.Delete(c.Context(), userId, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
			})
		}

		return utils.StandardInternalError(c, err)
	}

	metrics.NotificationsDeleted.Inc()
	r.publisher.NotificationDeleted(id, userId)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

// ownedBy treats the path user id as an authorization scope: the token user
// set by the jwt middleware must match it, so one user cannot list or
// mutate another user's notifications.
func ownedBy(c *fiber.Ctx, userId string) bool {
	user, ok := c.Locals("user").(string)
	return ok && user == userId
}

func accessDenied(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":             "access_denied",
		"error_description": "Notification belongs to another user",
	})
}
