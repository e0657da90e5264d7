package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetBill_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)

	mock.ExpectGet("cache:bill:BOOKING-1:fp1").RedisNil()

	bill, err := c.GetBill(context.Background(), "BOOKING-1", "fp1")
	require.NoError(t, err)
	assert.Nil(t, bill)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetBill_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)

	stored := domain.Bill{InvoiceRef: "BOOKING-1", BillNo: "BP-1", RedirectURL: "https://pay/1"}
	payload, _ := json.Marshal(stored)
	mock.ExpectGet("cache:bill:BOOKING-1:fp1").SetVal(string(payload))

	bill, err := c.GetBill(context.Background(), "BOOKING-1", "fp1")
	require.NoError(t, err)
	assert.Equal(t, &stored, bill)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetBill_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)

	mock.ExpectGet("cache:bill:BOOKING-1:fp1").SetErr(errors.New("down"))

	_, err := c.GetBill(context.Background(), "BOOKING-1", "fp1")
	assert.Error(t, err)
}

func TestRedisCache_SetBill(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, 30*time.Minute)

	bill := &domain.Bill{InvoiceRef: "BOOKING-1", BillNo: "BP-1", RedirectURL: "https://pay/1"}
	payload, _ := json.Marshal(bill)
	mock.ExpectSet("cache:bill:BOOKING-1:fp1", payload, 30*time.Minute).SetVal("OK")

	require.NoError(t, c.SetBill(context.Background(), "fp1", bill))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_MarkNotification(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)

	mock.ExpectSetNX("dedup:webhook:BOOKING-1:SUCCESS", "1", time.Hour).SetVal(true)
	mock.ExpectSetNX("dedup:webhook:BOOKING-1:SUCCESS", "1", time.Hour).SetVal(false)

	first, err := c.MarkNotification(context.Background(), "BOOKING-1", "SUCCESS", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := c.MarkNotification(context.Background(), "BOOKING-1", "SUCCESS", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), time.Minute)
	assert.NotNil(t, c)
}
