package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// MockChannel is a mock implementation of Channel
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait, args).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func completedTransfer(t *testing.T) *domain.Transfer {
	t.Helper()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tr, err := domain.NewTransfer(uuid.New(), domain.NewTransferParams{
		SenderWalletID:   uuid.New(),
		ReceiverWalletID: uuid.New(),
		Amount:           decimal.RequireFromString("500.25"),
		Memo:             "rent",
		Now:              now,
	})
	require.NoError(t, err)
	require.NoError(t, tr.Complete(now.Add(time.Second)))
	return tr
}

func TestNewTransferCompletedEvent(t *testing.T) {
	tr := completedTransfer(t)

	event := NewTransferCompletedEvent(tr)

	assert.Equal(t, EventTypeTransferCompleted, event.EventType)
	assert.Equal(t, tr.ID.String(), event.TransferID)
	assert.Equal(t, tr.SenderWalletID.String(), event.SenderWalletID)
	assert.Equal(t, tr.ReceiverWalletID.String(), event.ReceiverWalletID)
	assert.Equal(t, "500.25", event.Amount)
	assert.Equal(t, "COMPLETED", event.Status)
	assert.Equal(t, tr.UpdatedAt, event.OccurredAt)
	_, err := uuid.Parse(event.EventID)
	assert.NoError(t, err)
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", "wallet.operations", "topic", true, false, false, false, amqp.Table(nil)).Return(nil)

	p, err := newPublisher(ch, nil, "wallet.operations", "wallet.operations.transfer.completed")
	require.NoError(t, err)
	assert.NotNil(t, p)
	ch.AssertExpectations(t)
}

func TestNewPublisher_DeclareFails(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("access refused"))

	p, err := newPublisher(ch, nil, "wallet.operations", "key")
	assert.Nil(t, p)
	assert.ErrorContains(t, err, "failed to declare exchange")
}

func TestPublishTransferCompleted(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var published amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "wallet.operations", "wallet.operations.transfer.completed", false, false, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(5).(amqp.Publishing)
		}).
		Return(nil)

	p, err := newPublisher(ch, nil, "wallet.operations", "wallet.operations.transfer.completed")
	require.NoError(t, err)

	tr := completedTransfer(t)
	require.NoError(t, p.PublishTransferCompleted(context.Background(), tr))

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)
	assert.Equal(t, EventTypeTransferCompleted, published.Type)

	var event TransferCompletedEvent
	require.NoError(t, json.Unmarshal(published.Body, &event))
	assert.Equal(t, tr.ID.String(), event.TransferID)
	assert.Equal(t, published.MessageId, event.EventID)
	ch.AssertExpectations(t)
}

func TestPublishTransferCompleted_Error(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))

	p, err := newPublisher(ch, nil, "wallet.operations", "key")
	require.NoError(t, err)

	err = p.PublishTransferCompleted(context.Background(), completedTransfer(t))
	assert.ErrorContains(t, err, "failed to publish event: channel closed")
}

func TestClose(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("Close").Return(nil)

	p, err := newPublisher(ch, nil, "wallet.operations", "key")
	require.NoError(t, err)

	assert.NoError(t, p.Close())
	ch.AssertExpectations(t)
}
