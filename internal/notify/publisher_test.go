package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigo-records/care-records/backend/internal/config"
	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.RabbitMQ.PublishTimeout = 1
	cfg.Facility.Name = "樱花苑"
	cfg.Email.NotifyTo = "leader@example.com"
	return cfg
}

func TestPublishCommitSummary(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(newTestConfig(), ch)

	recordedAt := time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)
	err := p.PublishCommitSummary(domain.BulkCommitSummaryMailData{
		StaffName:  "王芳",
		Category:   domain.CategoryMeal.Label(),
		RecordedAt: recordedAt,
		Succeeded:  3,
		Skipped:    2,
	})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	assert.Equal(t, MailQueue, ch.keys[0])
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	var msg struct {
		Type string                           `json:"type"`
		To   string                           `json:"to"`
		Data domain.BulkCommitSummaryMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &msg))
	assert.Equal(t, domain.MailTypeBulkCommitSummary, msg.Type)
	assert.Equal(t, "leader@example.com", msg.To)
	assert.Equal(t, "樱花苑", msg.Data.FacilityName)
	assert.Equal(t, 3, msg.Data.Succeeded)
	assert.Equal(t, 2, msg.Data.Skipped)
}

func TestPublishCommitSummary_NoRecipient(t *testing.T) {
	cfg := newTestConfig()
	cfg.Email.NotifyTo = ""
	ch := &fakeChannel{}

	require.NoError(t, NewPublisher(cfg, ch).PublishCommitSummary(domain.BulkCommitSummaryMailData{}))
	assert.Empty(t, ch.published)
}

func TestPublishMail_Error(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}

	err := NewPublisher(newTestConfig(), ch).PublishMail(domain.MailMessage{Type: "x", To: "a@example.com"})
	assert.EqualError(t, err, "channel closed")
}
