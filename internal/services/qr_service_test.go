package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/groupfund/backend/internal/config"
)

func qrTestConfig() *config.QRConfig {
	return &config.QRConfig{CodeTimeout: 5 * time.Minute, MaxActivePerUser: 5}
}

func TestQRService_GenerateContributionQR(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	service := NewQRService(nil, redisClient, qrTestConfig())

	redisMock.ExpectIncr("qr:active:5").SetVal(1)
	redisMock.ExpectExpire("qr:active:5", 5*time.Minute).SetVal(true)
	redisMock.Regexp().ExpectSet(`qr:.*`, `.*`, 5*time.Minute).SetVal("OK")

	qrCode, qrImage, err := service.GenerateContributionQR(context.Background(), 5, 10, "Rent", 400)
	assert.NoError(t, err)
	assert.NotEmpty(t, qrCode)
	assert.NotEmpty(t, qrImage)

	// The code itself carries the invite payload.
	raw, err := base64.URLEncoding.DecodeString(qrCode)
	assert.NoError(t, err)
	var invite ContributionInvite
	assert.NoError(t, json.Unmarshal(raw, &invite))
	assert.Equal(t, 5, invite.UserID)
	assert.Equal(t, 10, invite.GroupID)
	assert.Equal(t, "Rent", invite.FundName)
	assert.Equal(t, int64(400), invite.Amount)
	assert.NotEmpty(t, invite.Nonce)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestQRService_GenerateCapsActiveCodes(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	service := NewQRService(nil, redisClient, qrTestConfig())

	redisMock.ExpectIncr("qr:active:5").SetVal(6)
	redisMock.ExpectDecr("qr:active:5").SetVal(5)

	_, _, err := service.GenerateContributionQR(context.Background(), 5, 10, "Rent", 400)
	assert.ErrorIs(t, err, ErrTooManyActiveCodes)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestQRService_ResolveContributionQR(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	service := NewQRService(nil, redisClient, qrTestConfig())

	t.Run("resolves and consumes the code", func(t *testing.T) {
		invite := ContributionInvite{UserID: 5, GroupID: 10, FundName: "Rent", Amount: 400, Nonce: "n"}
		payload, _ := json.Marshal(invite)
		code := base64.URLEncoding.EncodeToString(payload)

		redisMock.ExpectGet("qr:" + code).SetVal(string(payload))
		redisMock.ExpectDel("qr:" + code).SetVal(1)
		redisMock.ExpectDecr("qr:active:5").SetVal(0)

		got, err := service.ResolveContributionQR(context.Background(), code)
		assert.NoError(t, err)
		assert.Equal(t, invite.FundName, got.FundName)
		assert.Equal(t, invite.Amount, got.Amount)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		redisMock.ExpectGet("qr:expired").RedisNil()

		_, err := service.ResolveContributionQR(context.Background(), "expired")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or expired")
	})
}
