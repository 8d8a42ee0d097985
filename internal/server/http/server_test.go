package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"

	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
	"github.com/mlozanov/storefront/internal/token"
)

type fakeUsers struct {
	byName map[string]*model.User
	err    error
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.byName[u.UserName] = u
	return nil
}

func (f *fakeUsers) GetByUserName(_ context.Context, userName string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byName[userName]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ExistsByUserName(_ context.Context, userName string) (bool, error) {
	_, ok := f.byName[userName]
	return ok, nil
}

func (f *fakeUsers) ExistsByMail(_ context.Context, mail string) (bool, error) {
	for _, u := range f.byName {
		if u.Mail == mail {
			return true, nil
		}
	}
	return false, nil
}

type fakeAuth struct {
	loginToken string
	loginErr   error
	signUpErr  error
}

func (f *fakeAuth) Login(_ context.Context, _, _, _ string) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeAuth) SignUp(_ context.Context, _, _, _, _ string) (string, error) {
	return f.loginToken, f.signUpErr
}

func (f *fakeAuth) VerifyToken(string) (string, error) { return "", errs.ErrInvalidToken }

type fakeCatalog struct {
	products []model.Product
	err      error
}

func (f *fakeCatalog) Create(_ context.Context, p *model.Product) error {
	if f.err != nil {
		return f.err
	}
	p.ID = uuid.Must(uuid.NewV4())
	f.products = append(f.products, *p)
	return nil
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCatalog) List(context.Context) ([]model.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) Update(_ context.Context, p *model.Product) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = *p
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeCatalog) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeCart struct {
	items []model.CartItem
	err   error
}

func (f *fakeCart) Add(_ context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	it := model.CartItem{ID: uuid.Must(uuid.NewV4()), UserID: userID, ProductID: productID, Quantity: quantity}
	f.items = append(f.items, it)
	return &it, nil
}

func (f *fakeCart) List(_ context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	var out []model.CartItem
	for _, it := range f.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, f.err
}

func (f *fakeCart) UpdateQuantity(_ context.Context, userID, itemID uuid.UUID, quantity int) error {
	for i := range f.items {
		if f.items[i].ID == itemID && f.items[i].UserID == userID {
			f.items[i].Quantity = quantity
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeCart) Remove(_ context.Context, userID, itemID uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == itemID && f.items[i].UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeOrders struct {
	placed  *model.Order
	orders  []model.Order
	details []model.OrderDetail
	err     error
}

func (f *fakeOrders) Place(_ context.Context, _ uuid.UUID) (*model.Order, error) {
	return f.placed, f.err
}

func (f *fakeOrders) List(_ context.Context, _ uuid.UUID) ([]model.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrders) Get(_ context.Context, _, orderID uuid.UUID) (*model.Order, []model.OrderDetail, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			return &f.orders[i], f.details, nil
		}
	}
	return nil, nil, errs.ErrNotFound
}

type fixture struct {
	srv     *Server
	handler http.Handler
	codec   *token.Codec
	users   *fakeUsers
	auth    *fakeAuth
	catalog *fakeCatalog
	cart    *fakeCart
	orders  *fakeOrders
	user    *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	codec := token.NewCodec([]byte("test-signing-key"), time.Minute, log)

	u := &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Name:     "Bob Tester",
		UserName: "bob",
		Mail:     "bob@example.com",
	}
	f := &fixture{
		codec:   codec,
		users:   &fakeUsers{byName: map[string]*model.User{"bob": u}},
		auth:    &fakeAuth{},
		catalog: &fakeCatalog{},
		cart:    &fakeCart{},
		orders:  &fakeOrders{},
		user:    u,
	}
	f.srv = NewServer(f.auth, f.catalog, f.cart, f.orders, codec, f.users, log)
	f.handler = f.srv.Router()
	return f
}

func (f *fixture) bearer(t *testing.T) string {
	t.Helper()
	tok, err := f.codec.Issue(f.user.UserName)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok
}

func do(t *testing.T, h http.Handler, method, target, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRoutesRejectWithoutToken(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/api/products", "/api/cart", "/api/orders"} {
		rec := do(t, f.handler, http.MethodGet, target, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: got %d, want 401", target, rec.Code)
		}
	}
}

func TestAuthenticateTokenOutcomes(t *testing.T) {
	f := newFixture(t)

	valid := f.bearer(t)

	// An extra character invalidates the signature.
	tampered := valid + "A"

	// Expired token from a codec sharing the signing key.
	short := token.NewCodec([]byte("test-signing-key"), time.Nanosecond, nil)
	exp, err := short.Issue("bob")
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	cases := []struct {
		name string
		auth string
		want int
	}{
		{"valid", valid, http.StatusOK},
		{"tampered", tampered, http.StatusUnauthorized},
		{"expired", "Bearer " + exp, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"lowercase scheme", strings.Replace(valid, "Bearer", "bearer", 1), http.StatusUnauthorized},
		{"no space", strings.Replace(valid, "Bearer ", "Bearer", 1), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, f.handler, http.MethodGet, "/api/products", tc.auth, nil)
			if rec.Code != tc.want {
				t.Fatalf("got %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestAuthenticateDeletedAccount(t *testing.T) {
	f := newFixture(t)
	valid := f.bearer(t)

	delete(f.users.byName, "bob")

	rec := do(t, f.handler, http.MethodGet, "/api/products", valid, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted account: got %d, want 401", rec.Code)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	f := newFixture(t)
	rec := do(t, f.handler, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: got %d, want 200", rec.Code)
	}
}

func TestLoginResponses(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name     string
		token    string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"success", "tok123", nil, http.StatusOK, "Login successful"},
		{"bad credentials", "", errs.ErrBadCredentials, http.StatusUnauthorized, "The username or password is incorrect"},
		{"unknown user", "", errs.ErrUserNotFound, http.StatusUnauthorized, "User not found"},
		{"rate limited", "", errs.ErrRateLimited, http.StatusUnauthorized, "Too many failed attempts, try again later"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.auth.loginToken = tc.token
			f.auth.loginErr = tc.err

			rec := do(t, f.handler, http.MethodPost, "/api/auth/login", "",
				authRequest{UserName: "bob", Password: "pw"})
			if rec.Code != tc.wantCode {
				t.Fatalf("got %d, want %d", rec.Code, tc.wantCode)
			}

			var resp authResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", resp.Message, tc.wantMsg)
			}
			if tc.err == nil {
				if resp.Status != statusLoginSuccess || resp.Token == nil || *resp.Token != tc.token {
					t.Fatalf("success response malformed: %+v", resp)
				}
			} else if resp.Status != statusLoginFailed || resp.Token != nil {
				t.Fatalf("failure response malformed: %+v", resp)
			}
		})
	}
}

func TestRegisterResponses(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"created", nil, http.StatusOK, "User registered successfully"},
		{"duplicate username", errs.ErrDuplicateUserName, http.StatusConflict, "The username is already in use"},
		{"duplicate mail", errs.ErrDuplicateEmail, http.StatusConflict, "Email is already in use"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.auth.loginToken = "tok456"
			f.auth.signUpErr = tc.err

			rec := do(t, f.handler, http.MethodPost, "/api/auth/register", "",
				authRequest{Name: "Alice", UserName: "alice", Password: "pw", Mail: "a@x.com"})
			if rec.Code != tc.wantCode {
				t.Fatalf("got %d, want %d", rec.Code, tc.wantCode)
			}

			var resp authResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", resp.Message, tc.wantMsg)
			}
			if tc.err == nil && (resp.Status != statusUserCreated || resp.Token == nil) {
				t.Fatalf("success response malformed: %+v", resp)
			}
		})
	}
}

func TestMalformedJSONBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestProductCRUDOverHTTP(t *testing.T) {
	f := newFixture(t)
	auth := f.bearer(t)

	rec := do(t, f.handler, http.MethodPost, "/api/products", auth,
		productRequest{Name: "Mug", Description: "Ceramic mug", Price: "9.99", Stock: 10})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want 201", rec.Code)
	}
	var created productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.Price != "9.99" {
		t.Fatalf("created product malformed: %+v", created)
	}

	rec = do(t, f.handler, http.MethodGet, "/api/products/"+created.ID, auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d, want 200", rec.Code)
	}

	rec = do(t, f.handler, http.MethodDelete, "/api/products/"+created.ID, auth, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d, want 204", rec.Code)
	}

	rec = do(t, f.handler, http.MethodGet, "/api/products/"+created.ID, auth, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d, want 404", rec.Code)
	}
}

func TestProductValidationMapsTo400(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errs.ErrValidation

	rec := do(t, f.handler, http.MethodPost, "/api/products", f.bearer(t),
		productRequest{Name: "", Description: "", Price: "x", Stock: -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestCartFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	auth := f.bearer(t)
	productID := uuid.Must(uuid.NewV4())

	rec := do(t, f.handler, http.MethodPost, "/api/cart", auth,
		cartAddRequest{ProductID: productID.String(), Quantity: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: got %d, want 201", rec.Code)
	}
	var item cartItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}

	rec = do(t, f.handler, http.MethodPut, "/api/cart/"+item.ID, auth,
		cartUpdateRequest{Quantity: 5})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update: got %d, want 204", rec.Code)
	}

	rec = do(t, f.handler, http.MethodGet, "/api/cart", auth, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d, want 200", rec.Code)
	}
	var items []cartItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("cart contents wrong: %+v", items)
	}

	rec = do(t, f.handler, http.MethodDelete, "/api/cart/"+item.ID, auth, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove: got %d, want 204", rec.Code)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.orders.err = errs.ErrEmptyCart

	rec := do(t, f.handler, http.MethodPost, "/api/orders", f.bearer(t), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409", rec.Code)
	}
}

func TestGetOrderWithDetails(t *testing.T) {
	f := newFixture(t)

	o := model.Order{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     f.user.ID,
		Date:       time.Now().UTC().Truncate(time.Second),
		TotalPrice: "19.98",
	}
	f.orders.orders = []model.Order{o}
	f.orders.details = []model.OrderDetail{{
		ID:        uuid.Must(uuid.NewV4()),
		OrderID:   o.ID,
		ProductID: uuid.Must(uuid.NewV4()),
		Quantity:  2,
		SubTotal:  "19.98",
	}}

	rec := do(t, f.handler, http.MethodGet, "/api/orders/"+o.ID.String(), f.bearer(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var resp orderWithDetailsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalPrice != "19.98" || len(resp.Details) != 1 || resp.Details[0].Quantity != 2 {
		t.Fatalf("order response wrong: %+v", resp)
	}

	rec = do(t, f.handler, http.MethodGet, "/api/orders/"+uuid.Must(uuid.NewV4()).String(), f.bearer(t), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown order: got %d, want 404", rec.Code)
	}
}
