package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"

	"github.com/groupfund/backend/internal/config"
)

// ErrTooManyActiveCodes is returned when a user exceeds the active QR cap.
var ErrTooManyActiveCodes = errors.New("too many active QR codes")

// QRService issues short-lived contribution invites as QR codes. A group
// member generates a code naming a fund and amount; whoever scans it gets
// back the payload to pre-fill a contribution. Codes are single-use and
// expire out of Redis on their own.
type QRService struct {
	db    *sql.DB
	redis *redis.Client
	cfg   *config.QRConfig
}

func NewQRService(db *sql.DB, redis *redis.Client, cfg *config.QRConfig) *QRService {
	return &QRService{
		db:    db,
		redis: redis,
		cfg:   cfg,
	}
}

// ContributionInvite is the payload carried by a QR code.
type ContributionInvite struct {
	UserID    int    `json:"userId"`
	GroupID   int    `json:"groupId"`
	FundName  string `json:"fundName"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
}

func (s *QRService) GenerateContributionQR(ctx context.Context, userID, groupID int, fundName string, amount int64) (string, string, error) {
	// Per-user issuance cap. The counter shares the code TTL, so it is a
	// cap on codes issued per window, not an exact census of live codes.
	countKey := s.activeKey(userID)
	active, err := s.redis.Incr(ctx, countKey).Result()
	if err != nil {
		return "", "", err
	}
	if active == 1 {
		s.redis.Expire(ctx, countKey, s.cfg.CodeTimeout)
	}
	if active > int64(s.cfg.MaxActivePerUser) {
		s.redis.Decr(ctx, countKey)
		return "", "", ErrTooManyActiveCodes
	}

	invite := ContributionInvite{
		UserID:    userID,
		GroupID:   groupID,
		FundName:  fundName,
		Amount:    amount,
		Timestamp: time.Now().Unix(),
		Nonce:     s.generateNonce(),
	}

	jsonData, err := json.Marshal(invite)
	if err != nil {
		return "", "", err
	}

	qrCode := base64.URLEncoding.EncodeToString(jsonData)

	key := fmt.Sprintf("qr:%s", qrCode)
	if err := s.redis.Set(ctx, key, jsonData, s.cfg.CodeTimeout).Err(); err != nil {
		return "", "", err
	}

	qr, err := qrcode.New(qrCode, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	qrImage := base64.StdEncoding.EncodeToString(buf.Bytes())

	return qrCode, qrImage, nil
}

// ResolveContributionQR consumes a code and returns its invite payload.
func (s *QRService) ResolveContributionQR(ctx context.Context, qrData string) (*ContributionInvite, error) {
	key := fmt.Sprintf("qr:%s", qrData)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("invalid or expired QR code")
	}
	if err != nil {
		return nil, err
	}

	var invite ContributionInvite
	if err := json.Unmarshal(data, &invite); err != nil {
		return nil, err
	}

	s.redis.Del(ctx, key)
	s.redis.Decr(ctx, s.activeKey(invite.UserID))

	return &invite, nil
}

func (s *QRService) activeKey(userID int) string {
	return fmt.Sprintf("qr:active:%d", userID)
}

func (s *QRService) generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
