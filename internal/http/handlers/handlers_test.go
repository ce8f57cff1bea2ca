package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/budget-be/internal/auth"
	"github.com/hongminglow/budget-be/internal/directory"
	"github.com/hongminglow/budget-be/internal/ledger"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/query"
	"github.com/hongminglow/budget-be/internal/storage"
)

type memUsers struct {
	mu       sync.Mutex
	byID     map[int64]models.User
	nextID   int64
	lastPred query.Predicate
	lastPage query.PageRequest
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]models.User{}}
}

func (m *memUsers) FindByID(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) find(match func(models.User) bool) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.Username == username })
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) ExistsByID(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memUsers) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memUsers) Save(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) FindAll(_ context.Context, pred query.Predicate, page query.PageRequest) (query.Page[models.User], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPred, m.lastPage = pred, page
	items := make([]models.User, 0, len(m.byID))
	for _, u := range m.byID {
		items = append(items, u)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return query.Page[models.User]{Items: items, Page: page.Page, Size: page.Size, Total: int64(len(items))}, nil
}

type memTxs struct {
	mu     sync.Mutex
	byID   map[int64]models.Transaction
	nextID int64
}

var occurrenceTypes = []models.OccurrenceType{{ID: 1, Name: "once"}, {ID: 4, Name: "monthly"}}

func (m *memTxs) FindByID(_ context.Context, id int64) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.byID[id]
	if !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	return tx, nil
}

func (m *memTxs) filter(keep func(models.Transaction) bool) []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for id := int64(1); id <= m.nextID; id++ {
		if tx, ok := m.byID[id]; ok && keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func (m *memTxs) FindAllByUserID(_ context.Context, userID int64) ([]models.Transaction, error) {
	return m.filter(func(tx models.Transaction) bool { return tx.UserID == userID }), nil
}

func (m *memTxs) FindAll(context.Context) ([]models.Transaction, error) {
	return m.filter(func(models.Transaction) bool { return true }), nil
}

func (m *memTxs) ExistsByID(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memTxs) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memTxs) Save(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == 0 {
		m.nextID++
		tx.ID = m.nextID
	}
	m.byID[tx.ID] = tx
	return tx, nil
}

func (m *memTxs) OccurrenceTypes(context.Context) ([]models.OccurrenceType, error) {
	return occurrenceTypes, nil
}

func (m *memTxs) FindOccurrenceType(_ context.Context, id int64) (models.OccurrenceType, error) {
	for _, t := range occurrenceTypes {
		if t.ID == id {
			return t, nil
		}
	}
	return models.OccurrenceType{}, storage.ErrNotFound
}

type testAPI struct {
	router http.Handler
	users  *memUsers
	txs    *memTxs
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	users := newMemUsers()
	txs := &memTxs{byID: map[int64]models.Transaction{}}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager("test-secret", "budget-test", time.Hour)

	r := chi.NewRouter()
	NewHealthHandler(time.Now(), nil).Register(r)
	NewAuthHandler(directory.New(users, hasher), auth.NewAuthenticator(users, hasher, tokens)).Register(r)
	NewUserHandler(directory.New(users, hasher), 20, 50).Register(r)
	NewTransactionHandler(ledger.NewService(txs, users)).Register(r)
	return &testAPI{router: r, users: users, txs: txs}
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

func (a *testAPI) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *testAPI) register(t *testing.T, username, email string) models.User {
	t.Helper()
	code, env := a.do(t, http.MethodPost, "/register",
		`{"username":"`+username+`","email":"`+email+`","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var u models.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	return u
}

func TestRegisterCreatesAccount(t *testing.T) {
	api := newTestAPI(t)

	u := api.register(t, "alice", "alice@example.com")
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "alice", u.Username)

	stored, err := api.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterHidesPasswordHash(t *testing.T) {
	api := newTestAPI(t)
	_, env := api.do(t, http.MethodPost, "/register", `{"username":"bob","email":"bob@example.com","password":"s3cret-pass"}`)
	assert.NotContains(t, string(env.Data), "password")
}

func TestRegisterRejections(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "alice@example.com")

	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"null body", `null`, http.StatusBadRequest, directory.MsgRegistrationNull},
		{"malformed", `{"username":`, http.StatusBadRequest, "invalid JSON payload"},
		{"bad email", `{"username":"carol","email":"nope","password":"s3cret-pass"}`, http.StatusBadRequest, "email must be a valid email address"},
		{"short password", `{"username":"carol","email":"carol@example.com","password":"short"}`, http.StatusBadRequest, "password must be at least 8 characters"},
		{"duplicate username", `{"username":"alice","email":"other@example.com","password":"s3cret-pass"}`, http.StatusConflict, directory.MsgUsernameDuplicated},
		{"duplicate email", `{"username":"carol","email":"alice@example.com","password":"s3cret-pass"}`, http.StatusConflict, directory.MsgEmailDuplicated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := api.do(t, http.MethodPost, "/register", tc.body)
			assert.Equal(t, tc.status, code)
			assert.Equal(t, tc.message, env.Message)
			assert.NotEmpty(t, env.Timestamp)
		})
	}
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	u := api.register(t, "alice", "alice@example.com")

	code, env := api.do(t, http.MethodPost, "/login", `{"username":"alice","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, code)
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, u.ID, resp.User.ID)

	code, env = api.do(t, http.MethodPost, "/login", `{"username":"alice","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid login information", env.Message)

	code, env = api.do(t, http.MethodPost, "/login", `{"username":"ghost","password":"whatever"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", env.Message)

	code, _ = api.do(t, http.MethodPost, "/login", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListUsersFilterAndPaging(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "alice@example.com")
	api.register(t, "bob", "bob@example.com")

	code, env := api.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, code)
	var users []models.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)
	assert.Equal(t, query.MatchAll(), api.users.lastPred)
	assert.Equal(t, query.PageRequest{Page: 0, Size: 20}, api.users.lastPage)

	code, _ = api.do(t, http.MethodGet, "/users?username=al_&email=ex&page=2&size=500", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []query.Condition{
		{Field: "username", Op: query.OpILike, Value: `%al\_%`},
		{Field: "email", Op: query.OpILike, Value: "%ex%"},
	}, api.users.lastPred.Conditions)
	assert.Equal(t, query.PageRequest{Page: 2, Size: 50}, api.users.lastPage)

	code, _ = api.do(t, http.MethodGet, "/users?page=9223372036854775807&size=100", "")
	require.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, api.users.lastPage.Offset(), 0)

	code, env = api.do(t, http.MethodGet, "/users?page=two", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "page must be a number", env.Message)
}

func TestGetUpdateDeleteUser(t *testing.T) {
	api := newTestAPI(t)
	u := api.register(t, "alice", "alice@example.com")

	code, env := api.do(t, http.MethodGet, "/users/42", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, directory.MsgNoUserFound, env.Message)

	code, env = api.do(t, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "id must be a number", env.Message)

	code, env = api.do(t, http.MethodPut, "/users/1", `null`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, directory.MsgUserNull, env.Message)

	code, env = api.do(t, http.MethodPut, "/users/1", `{"id":99,"email":"new@example.com"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated models.User
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, u.ID, updated.ID)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "new@example.com", updated.Email)

	code, _ = api.do(t, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(t, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, directory.MsgUserNotDeletable, env.Message)
}

func TestTransactionRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice", "alice@example.com")

	code, env := api.do(t, http.MethodPost, "/transactions",
		`{"user_id":1,"amount":"2500.00","type":"income","occurrence_type_id":4,"description":"salary"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	code, _ = api.do(t, http.MethodPost, "/transactions",
		`{"user_id":1,"amount":"4.20","type":"expense","occurrence_type_id":1}`)
	require.Equal(t, http.StatusCreated, code)

	code, env = api.do(t, http.MethodGet, "/users/1/transactions/income", "")
	require.Equal(t, http.StatusOK, code)
	var income []models.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &income))
	require.Len(t, income, 1)
	assert.Equal(t, "salary", income[0].Description)
	assert.Equal(t, "monthly", income[0].OccurrenceType.Name)

	code, env = api.do(t, http.MethodGet, "/transactions/expenses", "")
	require.Equal(t, http.StatusOK, code)
	var expenses []models.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &expenses))
	assert.Len(t, expenses, 1)

	code, env = api.do(t, http.MethodPut, "/transactions/2", `{"amount":"5.00"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), `"5.00"`)

	code, env = api.do(t, http.MethodPost, "/transactions",
		`{"user_id":1,"amount":"abc","type":"expense","occurrence_type_id":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "amount is invalid", env.Message)

	code, env = api.do(t, http.MethodPost, "/transactions",
		`{"user_id":7,"amount":"1","type":"expense","occurrence_type_id":1}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, ledger.MsgNoUserFound, env.Message)

	code, _ = api.do(t, http.MethodDelete, "/transactions/2", "")
	assert.Equal(t, http.StatusOK, code)
	code, env = api.do(t, http.MethodGet, "/transactions/2", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, ledger.MsgNoTransactionFound, env.Message)

	code, env = api.do(t, http.MethodGet, "/occurrence-types", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(string(env.Data), "monthly"))
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	r := chi.NewRouter()
	NewHealthHandler(time.Now(), stubPinger{}).Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	r = chi.NewRouter()
	NewHealthHandler(time.Now(), stubPinger{err: errors.New("down")}).Register(r)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")
}
