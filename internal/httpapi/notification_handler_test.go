package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "smartshelf/internal/httpapi"
	"smartshelf/internal/models"
	"smartshelf/internal/repository"
	"smartshelf/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBroadcaster struct {
	broadcasted []*models.Notification
}

func (f *fakeBroadcaster) BroadcastNotification(n *models.Notification) {
	f.broadcasted = append(f.broadcasted, n)
}

func newNotificationHandler(t *testing.T) (*NotificationHandler, sqlmock.Sqlmock, *fakeBroadcaster) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	broadcaster := &fakeBroadcaster{}
	svc := service.NewNotificationService(repository.NewNotificationRepository(db), broadcaster, zap.NewNop())
	return NewNotificationHandler(svc, zap.NewNop()), mock, broadcaster
}

func TestNotificationHandler_CreateBroadcasts(t *testing.T) {
	h, mock, broadcaster := newNotificationHandler(t)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	body := strings.NewReader(`{"message":"Shelf tilt detected","type":"warning"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := decodeResult[*models.Notification](t, rec.Body.String())
	require.Equal(t, ResultSuccess, result.Code)
	assert.NotEmpty(t, result.Result.NotificationID)

	// 创建成功后推送到 websocket
	require.Len(t, broadcaster.broadcasted, 1)
	assert.Equal(t, "Shelf tilt detected", broadcaster.broadcasted[0].Message)
}

func TestNotificationHandler_CreateInvalidType(t *testing.T) {
	h, _, broadcaster := newNotificationHandler(t)

	body := strings.NewReader(`{"message":"x","type":"urgent"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := decodeResult[any](t, rec.Body.String())
	assert.Equal(t, ResultError, result.Code)
	assert.Empty(t, broadcaster.broadcasted)
}

func TestNotificationHandler_List(t *testing.T) {
	h, mock, _ := newNotificationHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT notification_id`).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"notification_id", "message", "type", "read",
			"shelf_id", "load_cell_id", "product_id", "user_id", "created_at",
		}).AddRow("n-1", "msg", "info", false, nil, nil, nil, nil, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?page=2&page_size=10", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := decodeResult[map[string]any](t, rec.Body.String())
	require.Equal(t, ResultSuccess, result.Code)
	assert.Equal(t, float64(1), result.Result["total"])
	assert.Equal(t, float64(2), result.Result["page"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	h, mock, _ := newNotificationHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications WHERE read = FALSE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := decodeResult[int](t, rec.Body.String())
	require.Equal(t, ResultSuccess, result.Code)
	assert.Equal(t, 4, result.Result)
}
