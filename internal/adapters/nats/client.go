package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"
)

// ReferralClient asks the platform's referral service whether a code admits
// a new registration.
type ReferralClient interface {
	ValidateCode(ctx context.Context, code string) (bool, error)
}

type referralClient struct {
	conn    *nats.Conn
	subject string
}

func NewReferralClient(conn *nats.Conn, subject string) ReferralClient {
	return &referralClient{conn: conn, subject: subject}
}

func (c *referralClient) ValidateCode(ctx context.Context, code string) (bool, error) {
	if c.conn == nil {
		return false, errors.New("nats connection is nil")
	}
	data, _ := json.Marshal(map[string]string{"code": code})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	msg, err := c.conn.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, fmt.Errorf("empty response from %s", c.subject)
	}
	var resp struct {
		OK    bool   `json:"ok"`
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return false, err
	}
	if !resp.OK {
		if resp.Error != "" {
			return false, errors.New(resp.Error)
		}
		return false, fmt.Errorf("request to %s failed", c.subject)
	}
	return resp.Valid, nil
}
