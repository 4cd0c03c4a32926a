package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"agrihub/internal/migrations"
	"agrihub/internal/models"
	"agrihub/internal/redis"
	"agrihub/internal/repository"
	"agrihub/internal/services"
	"agrihub/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	mediaRoot string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := migrations.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient, err := redis.Initialize("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("redis.Initialize failed: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	mediaRoot := t.TempDir()
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	notifier := services.NewNotificationService(nil, "")
	sessions := services.NewSessionService(redisClient, "test-secret", time.Hour, time.Minute)

	h := NewAPIHandler(Services{
		Catalog:  services.NewCatalogService(categoryRepo, productRepo),
		Cart:     services.NewCartService(cartRepo, productRepo, addressRepo),
		Orders:   services.NewOrderService(tx, repository.NewOrderRepository(db), cartRepo, addressRepo, notifier),
		Produce:  services.NewProduceService(productRepo, categoryRepo, storage.NewLocalImageStore(mediaRoot), services.ProducePolicy{}),
		Inquiry:  services.NewInquiryService(repository.NewInquiryRepository(db), notifier),
		Users:    services.NewUserService(tx, userRepo, repository.NewFarmerProfileRepository(db), addressRepo, services.NewRoleService(repository.NewGroupRepository(db))),
		Address:  services.NewAddressService(addressRepo),
		Sessions: sessions,
		Export:   services.NewExportService(productRepo),
	})

	router := NewRouter(RouterConfig{MediaURL: "/media", MediaRoot: mediaRoot}, h, sessions)
	return &testServer{router: router, db: db, mediaRoot: mediaRoot}
}

type request struct {
	method      string
	path        string
	body        string
	contentType string
	token       string
}

func (s *testServer) do(t *testing.T, r request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON from %s %s: %v", r.method, r.path, err)
		}
	}
	return w, body
}

func jsonBody(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return string(data)
}

// registerAndLogin creates an account through the API and returns its token.
func (s *testServer) registerAndLogin(t *testing.T, username string, farmer bool) string {
	t.Helper()

	form := url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password1": {"green-fields-42"},
		"password2": {"green-fields-42"},
	}
	if farmer {
		form.Set("is_farmer", "on")
	}
	w, body := s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/accounts/register",
		body:        form.Encode(),
		contentType: "application/x-www-form-urlencoded",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	if body["redirect"] != "/accounts/login/" {
		t.Errorf("register redirect = %v", body["redirect"])
	}

	w, body = s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/accounts/login",
		body:        jsonBody(t, map[string]string{"username": username, "password": "green-fields-42"}),
		contentType: "application/json",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %v", body)
	}
	return token
}

func (s *testServer) seedProduct(t *testing.T, slug, price string) *models.Product {
	t.Helper()
	var category models.Category
	if err := s.db.Where(models.Category{Slug: "vegetables"}).
		Attrs(models.Category{Title: "Vegetables", IsActive: true}).
		FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	product := &models.Product{
		Title:        slug,
		Slug:         slug,
		BatchID:      "sku-" + slug,
		PricePerUnit: decimal.RequireFromString(price),
		CategoryID:   category.ID,
		IsActive:     true,
		IsFeatured:   true,
	}
	if err := s.db.Omit("Category").Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, request{method: http.MethodGet, path: "/health"})
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", w.Code, body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/add-to-cart?prod_id=1"},
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart/1/plus"},
		{http.MethodPost, "/api/checkout"},
		{http.MethodGet, "/api/orders"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPost, "/api/produce"},
		{http.MethodDelete, "/api/produce/1"},
		{http.MethodGet, "/api/produce/export"},
		{http.MethodGet, "/api/messages"},
		{http.MethodPost, "/api/accounts/logout"},
		{http.MethodPost, "/api/accounts/password"},
	}

	for _, r := range routes {
		for _, token := range []string{"", "not-a-token"} {
			w, body := s.do(t, request{method: r.method, path: r.path, token: token})
			if w.Code != http.StatusUnauthorized {
				t.Errorf("%s %s (token %q): status = %d, want 401", r.method, r.path, token, w.Code)
				continue
			}
			if body["redirect"] != "/accounts/login/" {
				t.Errorf("%s %s: redirect = %v", r.method, r.path, body["redirect"])
			}
		}
	}
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seedProduct(t, "kale", "1.00")
	s.seedProduct(t, "spinach", "1.50")

	w, body := s.do(t, request{method: http.MethodGet, path: "/api/"})
	if w.Code != http.StatusOK {
		t.Fatalf("home status = %d", w.Code)
	}
	if products, _ := body["products"].([]interface{}); len(products) != 2 {
		t.Errorf("home products = %v", body["products"])
	}

	w, body = s.do(t, request{method: http.MethodGet, path: "/api/product/kale"})
	if w.Code != http.StatusOK {
		t.Fatalf("detail status = %d", w.Code)
	}
	if related, _ := body["related_products"].([]interface{}); len(related) != 1 {
		t.Errorf("related = %v", body["related_products"])
	}

	w, _ = s.do(t, request{method: http.MethodGet, path: "/api/product/missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", w.Code)
	}

	w, _ = s.do(t, request{method: http.MethodGet, path: "/api/category/nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing category status = %d, want 404", w.Code)
	}

	w, body = s.do(t, request{method: http.MethodGet, path: "/api/search?q=spin"})
	if products, _ := body["products"].([]interface{}); w.Code != http.StatusOK || len(products) != 1 {
		t.Errorf("search = %d %v", w.Code, body)
	}
}

func TestContact(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/contact",
		body:        url.Values{"name": {"Amina"}, "email": {"amina@example.com"}, "subject": {""}, "message": {"Hi"}}.Encode(),
		contentType: "application/x-www-form-urlencoded",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if fields, _ := body["fields"].(map[string]interface{}); fields["subject"] == nil {
		t.Errorf("fields = %v", body["fields"])
	}

	w, body = s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/contact",
		body:        jsonBody(t, map[string]string{"name": "Amina", "email": "amina@example.com", "subject": "Hi", "message": "Hello"}),
		contentType: "application/json",
	})
	if w.Code != http.StatusCreated || body["redirect"] != "/contact/" {
		t.Errorf("contact = %d %v", w.Code, body)
	}
}

func TestShoppingFlow(t *testing.T) {
	s := newTestServer(t)
	kale := s.seedProduct(t, "kale", "2.00")
	token := s.registerAndLogin(t, "buyer", false)

	for i := 0; i < 2; i++ {
		w, body := s.do(t, request{method: http.MethodPost, path: "/api/add-to-cart?prod_id=" + itoa(kale.ID), token: token})
		if w.Code != http.StatusOK || body["redirect"] != "/cart/" {
			t.Fatalf("add-to-cart = %d %v", w.Code, body)
		}
	}

	w, _ := s.do(t, request{method: http.MethodPost, path: "/api/add-to-cart?prod_id=999", token: token})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", w.Code)
	}

	w, body := s.do(t, request{method: http.MethodGet, path: "/api/cart", token: token})
	if w.Code != http.StatusOK {
		t.Fatalf("cart status = %d", w.Code)
	}
	if !decimalField(t, body, "amount").Equal(decimal.NewFromInt(4)) ||
		!decimalField(t, body, "total_amount").Equal(decimal.NewFromInt(14)) {
		t.Errorf("cart totals = %v / %v", body["amount"], body["total_amount"])
	}

	w, body = s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/profile/address",
		body:        jsonBody(t, map[string]string{"locality": "Westlands", "city": "Nairobi", "state": "Nairobi"}),
		contentType: "application/json",
		token:       token,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add address = %d %v", w.Code, body)
	}
	address, _ := body["address"].(map[string]interface{})
	addressID, _ := address["id"].(float64)

	w, body = s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/checkout",
		body:        jsonBody(t, map[string]interface{}{"address_id": addressID}),
		contentType: "application/json",
		token:       token,
	})
	if w.Code != http.StatusCreated || body["redirect"] != "/orders/" {
		t.Fatalf("checkout = %d %v", w.Code, body)
	}

	w, body = s.do(t, request{method: http.MethodGet, path: "/api/orders", token: token})
	if orders, _ := body["orders"].([]interface{}); w.Code != http.StatusOK || len(orders) != 1 {
		t.Errorf("orders = %d %v", w.Code, body)
	}

	w, body = s.do(t, request{method: http.MethodGet, path: "/api/messages", token: token})
	messages, _ := body["messages"].([]interface{})
	if w.Code != http.StatusOK || len(messages) != 2 {
		t.Fatalf("messages = %d %v", w.Code, body)
	}
	if messages[1] != "Your order has been placed." {
		t.Errorf("last message = %v", messages[1])
	}

	w, body = s.do(t, request{method: http.MethodPost, path: "/api/checkout", body: `{"address_id": 1}`, contentType: "application/json", token: token})
	if w.Code != http.StatusBadRequest {
		t.Errorf("second checkout = %d %v, want 400 for an empty basket", w.Code, body)
	}

	w, _ = s.do(t, request{method: http.MethodPost, path: "/api/accounts/logout", token: token})
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w, _ = s.do(t, request{method: http.MethodGet, path: "/api/cart", token: token})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("cart after logout = %d, want 401", w.Code)
	}
}

func TestCheckoutPlaceholderForAnonymous(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, request{method: http.MethodGet, path: "/api/checkout"})
	if w.Code != http.StatusOK || body["authenticated"] != false {
		t.Errorf("anonymous checkout = %d %v", w.Code, body)
	}

	token := s.registerAndLogin(t, "buyer", false)
	w, body = s.do(t, request{method: http.MethodGet, path: "/api/checkout", token: token})
	if w.Code != http.StatusOK || body["authenticated"] != true {
		t.Errorf("logged in checkout = %d %v", w.Code, body)
	}
}

func TestFarmerProduceLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.seedProduct(t, "seed", "1.00")
	var category models.Category
	if err := s.db.Where("slug = ?", "vegetables").First(&category).Error; err != nil {
		t.Fatalf("failed to load category: %v", err)
	}
	token := s.registerAndLogin(t, "farmer", true)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":          "Purple Onions",
		"slug":           "purple-onions",
		"batch_id":       "ONI-1",
		"price_per_unit": "1.75",
		"unit_type":      "BAG",
		"category":       itoa(category.ID),
		"is_active":      "on",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	part, err := mw.CreateFormFile("product_image", "onions.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("png-bytes"))
	mw.Close()

	w, body := s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/produce",
		body:        buf.String(),
		contentType: mw.FormDataContentType(),
		token:       token,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create produce = %d %v", w.Code, body)
	}
	product, _ := body["product"].(map[string]interface{})
	if product["slug"] != "purple-onions" || product["is_active"] != true {
		t.Errorf("product = %v", product)
	}
	image, _ := product["product_image"].(string)
	if _, err := os.Stat(filepath.Join(s.mediaRoot, filepath.FromSlash(image))); err != nil {
		t.Errorf("uploaded image not on disk: %v", err)
	}

	w, _ = s.do(t, request{method: http.MethodGet, path: "/media/" + image})
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Errorf("media download = %d %q", w.Code, w.Body.String())
	}

	id := itoa(uint(product["id"].(float64)))
	w, body = s.do(t, request{
		method:      http.MethodPut,
		path:        "/api/produce/" + id,
		body:        jsonBody(t, map[string]interface{}{"title": "Purple Onions", "slug": "purple-onions", "batch_id": "ONI-1", "price_per_unit": "-3", "category": category.ID}),
		contentType: "application/json",
		token:       token,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid update = %d %v, want 400", w.Code, body)
	}

	w, body = s.do(t, request{method: http.MethodGet, path: "/api/produce/export", token: token})
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("export = %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w, body = s.do(t, request{method: http.MethodDelete, path: "/api/produce/" + id, token: token})
	if w.Code != http.StatusOK || body["message"] != "Produce 'Purple Onions' successfully deleted." {
		t.Errorf("delete = %d %v", w.Code, body)
	}

	w, _ = s.do(t, request{method: http.MethodDelete, path: "/api/produce/" + id, token: token})
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "buyer", false)

	w, body := s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/accounts/password",
		body:        url.Values{"old_password": {"wrong-password"}, "new_password1": {"dry-season-77"}, "new_password2": {"dry-season-77"}}.Encode(),
		contentType: "application/x-www-form-urlencoded",
		token:       token,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong old password = %d %v, want 400", w.Code, body)
	}
	if fields, _ := body["fields"].(map[string]interface{}); fields["old_password"] == nil {
		t.Errorf("fields = %v", body["fields"])
	}

	w, body = s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/accounts/password",
		body:        jsonBody(t, map[string]string{"old_password": "green-fields-42", "new_password1": "dry-season-77", "new_password2": "dry-season-77"}),
		contentType: "application/json",
		token:       token,
	})
	if w.Code != http.StatusOK || body["redirect"] != "/accounts/profile/" {
		t.Fatalf("change password = %d %v", w.Code, body)
	}

	w, _ = s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/accounts/login",
		body:        jsonBody(t, map[string]string{"username": "buyer", "password": "dry-season-77"}),
		contentType: "application/json",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login with new password = %d, want 200", w.Code)
	}
}

func TestOrderStatusRequiresFarmer(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "buyer", false)

	w, _ := s.do(t, request{
		method:      http.MethodPut,
		path:        "/api/orders/1/status",
		body:        `{"status": "Accepted"}`,
		contentType: "application/json",
		token:       token,
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("status update by buyer = %d, want 403", w.Code)
	}
}

func decimalField(t *testing.T, body map[string]interface{}, key string) decimal.Decimal {
	t.Helper()
	raw, _ := body[key].(string)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("%s = %v is not a decimal", key, body[key])
	}
	return d
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
