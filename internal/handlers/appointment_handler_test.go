package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
)

// ======================================================
// TEST SETUP
// ======================================================

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	cfg    *config.Config
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive and
	// serializes the async audit writes
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, dbpkg.Migrate(db))

	cfg := &config.Config{
		JWTSecret:            "test-secret",
		Timezone:             "UTC",
		SkipEmailDomainCheck: true,
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes.RegisterRoutes(router, db, cfg)

	return &testEnv{db: db, router: router, cfg: cfg}
}

func (e *testEnv) createUser(t *testing.T, name, role string) (models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: string(hashed),
		Role:         role,
	}
	require.NoError(t, e.db.Create(&user).Error)

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(e.cfg.JWTSecret))
	require.NoError(t, err)

	return user, token
}

func (e *testEnv) createService(t *testing.T, name string, durationMin *int) models.Service {
	t.Helper()

	svc := models.Service{Name: name, DurationMinutes: durationMin, Active: true}
	require.NoError(t, e.db.Create(&svc).Error)
	return svc
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (e *testEnv) book(t *testing.T, token string, serviceID uuid.UUID, scheduledAt string) *httptest.ResponseRecorder {
	t.Helper()

	return e.request(t, http.MethodPost, "/api/appointments", token, gin.H{
		"serviceId":   serviceID.String(),
		"scheduledAt": scheduledAt,
	})
}

func minutes(v int) *int { return &v }

// ======================================================
// BOOKING
// ======================================================

func TestBookAppointment(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T18:30:00Z")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "scheduled", body["status"])
	assert.Equal(t, svc.ID.String(), body["serviceId"])
	assert.Nil(t, body["barberId"])
	assert.NotEmpty(t, body["id"])
}

func TestBookRequiresAuth(t *testing.T) {
	env := setupEnv(t)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, "", svc.ID, "2025-10-15T18:30:00Z")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookMissingFields(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)

	w := env.request(t, http.MethodPost, "/api/appointments", token, gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookInvalidDate(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "not-a-date")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_date", decode(t, w)["error_code"])
}

func TestBookUnknownService(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)

	w := env.book(t, token, uuid.New(), "2025-10-15T18:30:00Z")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "service_not_found", decode(t, w)["error_code"])
}

func TestBookSameSlotConflicts(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T18:30:00Z")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.book(t, token, svc.ID, "2025-10-15T18:30:00Z")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "time_conflict", decode(t, w)["error_code"])
}

func TestBookConcurrentSameSlotAdmitsOne(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	const attempts = 8
	codes := make(chan int, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := env.book(t, token, svc.ID, "2025-10-15T18:30:00Z")
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	created, conflicted := 0, 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicted)
}

func TestBookStorageFailureIsNotNotFound(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := env.book(t, token, svc.ID, "2025-10-15T18:30:00Z")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decode(t, w)["error_code"])
}

func TestBookOverlapConflicts(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	long := env.createService(t, "Haircut + beard", minutes(60))
	short := env.createService(t, "Beard trim", minutes(30))

	w := env.book(t, token, long.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)

	// starts inside the existing interval
	w = env.book(t, token, short.ID, "2025-10-15T10:30:00Z")
	assert.Equal(t, http.StatusConflict, w.Code)

	// fully contains the existing interval
	w = env.book(t, token, long.ID, "2025-10-15T09:30:00Z")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookAbuttingDoesNotConflict(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)

	// ends exactly when the next one starts
	w = env.book(t, token, svc.ID, "2025-10-15T10:30:00Z")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.book(t, token, svc.ID, "2025-10-15T09:30:00Z")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBookDisjointSlotsEitherOrder(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T15:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.book(t, token, svc.ID, "2025-10-15T09:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestBookIgnoresCancelledAppointments(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodDelete, "/api/appointments/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the cancelled appointment no longer blocks the slot
	w = env.book(t, token, svc.ID, "2025-10-15T10:00:00Z")
	assert.Equal(t, http.StatusCreated, w.Code)
}

// ======================================================
// OCCUPIED SLOTS
// ======================================================

func TestOccupiedSlotsEndpoint(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T18:30:00Z")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/appointments/occupied-slots?date=2025-10-15", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"occupiedSlots":["18:30"]}`, w.Body.String())
}

func TestOccupiedSlotsEmptyDay(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)

	w := env.request(t, http.MethodGet, "/api/appointments/occupied-slots?date=2025-10-16", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"occupiedSlots":[]}`, w.Body.String())
}

func TestOccupiedSlotsMissingDate(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)

	w := env.request(t, http.MethodGet, "/api/appointments/occupied-slots", token, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_date", decode(t, w)["error_code"])
}

func TestOccupiedSlotsInvalidDate(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)

	w := env.request(t, http.MethodGet, "/api/appointments/occupied-slots?date=15-10-2025", token, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ======================================================
// CANCEL
// ======================================================

func TestCancelByOwner(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodDelete, "/api/appointments/"+id, token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["status"])
}

func TestCancelByNonOwnerForbidden(t *testing.T) {
	env := setupEnv(t)
	_, ownerToken := env.createUser(t, "alice", models.RoleClient)
	_, otherToken := env.createUser(t, "mallory", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, ownerToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodDelete, "/api/appointments/"+id, otherToken, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// status unchanged
	var ap models.Appointment
	require.NoError(t, env.db.Where("id = ?", id).First(&ap).Error)
	assert.Equal(t, "scheduled", ap.Status)
}

func TestCancelUnknownAppointment(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)

	w := env.request(t, http.MethodDelete, "/api/appointments/"+uuid.NewString(), token, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelStorageFailureIsNotNotFound(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = env.request(t, http.MethodDelete, "/api/appointments/"+id, token, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decode(t, w)["error_code"])
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	_, token := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, token, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodDelete, "/api/appointments/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodDelete, "/api/appointments/"+id, token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["status"])
}

// ======================================================
// STATUS LIFECYCLE
// ======================================================

func TestUpdateStatusRequiresBarber(t *testing.T) {
	env := setupEnv(t)
	_, clientToken := env.createUser(t, "alice", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, clientToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodPatch, "/api/appointments/"+id+"/status", clientToken, gin.H{
		"status": "accepted",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	env := setupEnv(t)
	_, clientToken := env.createUser(t, "alice", models.RoleClient)
	barber, barberToken := env.createUser(t, "bob", models.RoleBarber)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, clientToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	statusPath := "/api/appointments/" + id + "/status"

	// completing a scheduled appointment is rejected
	w = env.request(t, http.MethodPatch, statusPath, barberToken, gin.H{"status": "completed"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only accepted appointments can be completed", decode(t, w)["message"])

	// accept stamps the acting barber
	w = env.request(t, http.MethodPatch, statusPath, barberToken, gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "accepted", body["status"])
	assert.Equal(t, barber.ID.String(), body["barberId"])

	// accepting twice is rejected
	w = env.request(t, http.MethodPatch, statusPath, barberToken, gin.H{"status": "accepted"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only scheduled appointments can be accepted or rejected", decode(t, w)["message"])

	// complete from accepted
	w = env.request(t, http.MethodPatch, statusPath, barberToken, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["status"])

	// completed is terminal
	w = env.request(t, http.MethodPatch, statusPath, barberToken, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusRejected(t *testing.T) {
	env := setupEnv(t)
	_, clientToken := env.createUser(t, "alice", models.RoleClient)
	_, barberToken := env.createUser(t, "bob", models.RoleBarber)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, clientToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodPatch, "/api/appointments/"+id+"/status", barberToken, gin.H{
		"status": "rejected",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// rejected is terminal
	w = env.request(t, http.MethodPatch, "/api/appointments/"+id+"/status", barberToken, gin.H{
		"status": "accepted",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	env := setupEnv(t)
	_, clientToken := env.createUser(t, "alice", models.RoleClient)
	_, barberToken := env.createUser(t, "bob", models.RoleBarber)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, clientToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	for _, status := range []string{"cancelled", "scheduled", "done"} {
		w = env.request(t, http.MethodPatch, "/api/appointments/"+id+"/status", barberToken, gin.H{
			"status": status,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "status %q", status)
		assert.Equal(t, "invalid_status", decode(t, w)["error_code"])
	}
}

func TestUpdateStatusOnCancelledAppointment(t *testing.T) {
	env := setupEnv(t)
	_, clientToken := env.createUser(t, "alice", models.RoleClient)
	_, barberToken := env.createUser(t, "bob", models.RoleBarber)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, clientToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodDelete, "/api/appointments/"+id, clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPatch, "/api/appointments/"+id+"/status", barberToken, gin.H{
		"status": "accepted",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cancelled appointments cannot be updated", decode(t, w)["message"])
}

func TestUpdateStatusUnknownAppointment(t *testing.T) {
	env := setupEnv(t)
	_, barberToken := env.createUser(t, "bob", models.RoleBarber)

	w := env.request(t, http.MethodPatch, "/api/appointments/"+uuid.NewString()+"/status", barberToken, gin.H{
		"status": "accepted",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ======================================================
// LISTINGS
// ======================================================

func TestListOwnAppointments(t *testing.T) {
	env := setupEnv(t)
	_, aliceToken := env.createUser(t, "alice", models.RoleClient)
	_, carolToken := env.createUser(t, "carol", models.RoleClient)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, aliceToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.book(t, aliceToken, svc.ID, "2025-10-16T11:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.book(t, carolToken, svc.ID, "2025-10-15T12:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/appointments", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)

	// newest first, service embedded
	assert.Equal(t, "2025-10-16T11:00:00Z", list[0]["scheduledAt"])
	assert.Equal(t, "2025-10-15T10:00:00Z", list[1]["scheduledAt"])
	require.NotNil(t, list[0]["service"])
	assert.Equal(t, "Haircut", list[0]["service"].(map[string]any)["name"])
}

func TestListAllRequiresBarber(t *testing.T) {
	env := setupEnv(t)
	_, clientToken := env.createUser(t, "alice", models.RoleClient)

	w := env.request(t, http.MethodGet, "/api/appointments/all", clientToken, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListAllExcludesCancelled(t *testing.T) {
	env := setupEnv(t)
	alice, clientToken := env.createUser(t, "alice", models.RoleClient)
	_, barberToken := env.createUser(t, "bob", models.RoleBarber)
	svc := env.createService(t, "Haircut", minutes(30))

	w := env.book(t, clientToken, svc.ID, "2025-10-15T10:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	keep := decode(t, w)["id"].(string)

	w = env.book(t, clientToken, svc.ID, "2025-10-15T14:00:00Z")
	require.Equal(t, http.StatusCreated, w.Code)
	dropped := decode(t, w)["id"].(string)

	w = env.request(t, http.MethodDelete, "/api/appointments/"+dropped, clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/appointments/all", barberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	assert.Equal(t, keep, list[0]["id"])
	require.NotNil(t, list[0]["client"])
	assert.Equal(t, alice.Name, list[0]["client"].(map[string]any)["name"])
}
