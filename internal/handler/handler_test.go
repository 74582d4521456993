package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-marketplace-api/internal/handler"
	"go-marketplace-api/internal/middleware"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/storage"
)

// newTestApp wires the full HTTP surface against an in-memory database,
// mirroring cmd/api.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Category{}, &model.Product{}, &model.ProductImage{}))

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	imageRepo := repository.NewImageRepo(db)

	require.NoError(t, categoryRepo.SeedDefaults())

	accountHandler := handler.NewAccountHandler(service.NewAccountService(userRepo, store, log))
	catalogHandler := handler.NewCatalogHandler(service.NewCatalogService(categoryRepo))
	listingHandler := handler.NewListingHandler(service.NewListingService(productRepo, imageRepo, categoryRepo, store, nil, log))

	app := fiber.New()
	api := app.Group("/api")

	accounts := api.Group("/accounts")
	accounts.Post("/register", accountHandler.Register)
	accounts.Post("/token", accountHandler.Login)
	accounts.Get("/user/:username", accountHandler.PublicProfile)
	accounts.Get("/me", middleware.RequireAuth(userRepo), accountHandler.MyProfile)
	accounts.Put("/me", middleware.RequireAuth(userRepo), accountHandler.UpdateMyProfile)

	products := api.Group("/products")
	products.Get("/categories", catalogHandler.ListCategories)
	products.Get("/items", listingHandler.GetProducts)
	products.Get("/items/myproducts", middleware.RequireAuth(userRepo), listingHandler.MyProducts)
	products.Get("/items/:id", listingHandler.GetProduct)
	products.Post("/items", middleware.RequireAuth(userRepo), listingHandler.CreateProduct)
	products.Put("/items/:id", middleware.RequireAuth(userRepo), listingHandler.UpdateProduct)
	products.Patch("/items/:id", middleware.RequireAuth(userRepo), listingHandler.UpdateProduct)
	products.Delete("/items/:id", middleware.RequireAuth(userRepo), listingHandler.DeleteProduct)
	products.Post("/items/:id/upload_image", middleware.RequireAuth(userRepo), listingHandler.UploadImage)
	products.Delete("/items/:id/images/:imageID", middleware.RequireAuth(userRepo), listingHandler.DeleteImage)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerUser(t *testing.T, app *fiber.App, username string) {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/api/accounts/register", "", fiber.Map{
		"username":       username,
		"email":          username + "@example.com",
		"password":       "secret123",
		"password_again": "secret123",
		"first_name":     "Test",
		"last_name":      "User",
	})
	require.Equal(t, 201, resp.StatusCode)
}

func loginUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/api/accounts/token", "", fiber.Map{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func createBike(t *testing.T, app *fiber.App, token string) model.ProductResponse {
	t.Helper()

	resp := doJSON(t, app, fiber.MethodPost, "/api/products/items", token, fiber.Map{
		"title":       "Bike",
		"description": "A sturdy city bike",
		"category_id": 1,
		"is_sale":     true,
		"is_trade":    false,
		"location":    "Berlin",
	})
	require.Equal(t, 201, resp.StatusCode)

	var product model.ProductResponse
	decode(t, resp, &product)
	return product
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "alice")

	t.Run("password mismatch", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/api/accounts/register", "", fiber.Map{
			"username":       "carol",
			"email":          "carol@example.com",
			"password":       "secret123",
			"password_again": "other",
			"first_name":     "Carol",
			"last_name":      "Doe",
		})
		assert.Equal(t, 400, resp.StatusCode)

		var fields map[string]string
		decode(t, resp, &fields)
		assert.Contains(t, fields, "password")
	})

	t.Run("duplicate username", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, "/api/accounts/register", "", fiber.Map{
			"username":       "alice",
			"email":          "alice2@example.com",
			"password":       "secret123",
			"password_again": "secret123",
			"first_name":     "Alice",
			"last_name":      "Doe",
		})
		assert.Equal(t, 400, resp.StatusCode)

		var fields map[string]string
		decode(t, resp, &fields)
		assert.Contains(t, fields, "username")
	})
}

func TestPublicProfile(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodGet, "/api/accounts/user/alice", "", nil)
	require.Equal(t, 200, resp.StatusCode)

	var profile model.PublicProfileResponse
	decode(t, resp, &profile)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.com", profile.Email)

	resp = doJSON(t, app, fiber.MethodGet, "/api/accounts/user/ghost", "", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCategoriesEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/products/categories", "", nil)
	require.Equal(t, 200, resp.StatusCode)

	var categories []model.Category
	decode(t, resp, &categories)
	require.NotEmpty(t, categories)
	assert.NotEmpty(t, categories[0].Slug, "slug is derived from the name")
}

func TestProductLifecycle(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "alice")
	registerUser(t, app, "bob")
	aliceToken := loginUser(t, app, "alice")
	bobToken := loginUser(t, app, "bob")

	// Scenario: alice lists her bike
	product := createBike(t, app, aliceToken)
	assert.Equal(t, "alice", product.OwnerUsername)
	assert.False(t, product.IsSold)

	// Unauthenticated creation is rejected
	resp := doJSON(t, app, fiber.MethodPost, "/api/products/items", "", fiber.Map{
		"title": "x", "description": "y", "is_sale": true, "location": "z",
	})
	assert.Equal(t, 401, resp.StatusCode)

	// bob cannot modify alice's listing
	resp = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/products/items/%s", product.ID), bobToken, fiber.Map{
		"title": "Bob's now",
	})
	assert.Equal(t, 403, resp.StatusCode)

	// ...and it is unchanged
	resp = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/products/items/%s", product.ID), "", nil)
	require.Equal(t, 200, resp.StatusCode)
	var fetched model.ProductResponse
	decode(t, resp, &fetched)
	assert.Equal(t, "Bike", fetched.Title)

	// alice can patch it
	resp = doJSON(t, app, fiber.MethodPatch, fmt.Sprintf("/api/products/items/%s", product.ID), aliceToken, fiber.Map{
		"price": 99.90,
	})
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &fetched)
	require.NotNil(t, fetched.Price)
	assert.Equal(t, 99.90, *fetched.Price)

	// search finds it
	resp = doJSON(t, app, fiber.MethodGet, "/api/products/items?search=Bike", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	var results []model.ProductResponse
	decode(t, resp, &results)
	require.Len(t, results, 1)

	// myproducts is owner-scoped
	resp = doJSON(t, app, fiber.MethodGet, "/api/products/items/myproducts", bobToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &results)
	assert.Empty(t, results)

	// bob cannot delete, alice can
	resp = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/products/items/%s", product.ID), bobToken, nil)
	assert.Equal(t, 403, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/products/items/%s", product.ID), aliceToken, nil)
	assert.Equal(t, 204, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/products/items/%s", product.ID), "", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCreateProductRequiresSaleOrTrade(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "alice")
	token := loginUser(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/products/items", token, fiber.Map{
		"title":       "Bike",
		"description": "neither flag set",
		"location":    "Berlin",
	})
	assert.Equal(t, 400, resp.StatusCode)

	var fields map[string]string
	decode(t, resp, &fields)
	assert.Contains(t, fields, "non_field_errors")
}

func TestUploadImage(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "alice")
	registerUser(t, app, "bob")
	aliceToken := loginUser(t, app, "alice")
	bobToken := loginUser(t, app, "bob")
	product := createBike(t, app, aliceToken)

	t.Run("missing file", func(t *testing.T) {
		resp := doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/products/items/%s/upload_image", product.ID), aliceToken, nil)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("any authenticated user may upload", func(t *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		fw, err := w.CreateFormFile("image", "bike.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(fiber.MethodPost, fmt.Sprintf("/api/products/items/%s/upload_image", product.ID), body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+bobToken)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)

		// The image shows up on the listing
		getResp := doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/products/items/%s", product.ID), "", nil)
		var fetched model.ProductResponse
		decode(t, getResp, &fetched)
		assert.Len(t, fetched.Images, 1)
	})
}

func TestOwnProfileEndpoint(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "alice")
	token := loginUser(t, app, "alice")

	resp := doJSON(t, app, fiber.MethodGet, "/api/accounts/me", token, nil)
	require.Equal(t, 200, resp.StatusCode)

	var profile model.ProfileResponse
	decode(t, resp, &profile)
	assert.Equal(t, "alice", profile.Username)

	resp = doJSON(t, app, fiber.MethodPut, "/api/accounts/me", token, fiber.Map{
		"bio": "I trade bikes",
	})
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &profile)
	assert.Equal(t, "I trade bikes", profile.Bio)
	assert.Equal(t, "alice", profile.Username)

	resp = doJSON(t, app, fiber.MethodGet, "/api/accounts/me", "", nil)
	assert.Equal(t, 401, resp.StatusCode)
}
