package handler

import (
	"go-marketplace-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Helper to read the caller's user ID from the context (set by auth middleware)
func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, _ := c.Locals("user_id").(string)
	return uuid.Parse(userID)
}

// Register handles account creation
// POST /api/accounts/register
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid body"})
	}

	// Optional avatar, multipart only
	avatar, _ := c.FormFile("profile_image")

	if _, err := h.accountService.Register(&req, avatar); err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "User created successfully"})
}

// Login issues a JWT for valid credentials
// POST /api/accounts/token
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid body"})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username and password are required"})
	}

	response, err := h.accountService.Login(req.Username, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(response)
}

// PublicProfile returns the read-only profile subset for any caller
// GET /api/accounts/user/:username
func (h *AccountHandler) PublicProfile(c *fiber.Ctx) error {
	profile, err := h.accountService.GetPublicProfile(c.Params("username"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(profile)
}

// MyProfile returns the caller's own profile
// GET /api/accounts/me
func (h *AccountHandler) MyProfile(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	profile, err := h.accountService.GetProfile(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(profile)
}

// UpdateMyProfile updates the caller's own profile
// PUT /api/accounts/me
func (h *AccountHandler) UpdateMyProfile(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid body"})
	}

	avatar, _ := c.FormFile("profile_image")

	profile, err := h.accountService.UpdateProfile(userID, &req, avatar)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(profile)
}
