package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"budget/internal/core"
)

type fakeChannel struct {
	mu         sync.Mutex
	published  []amqp091.Publishing
	keys       []string
	publishErr error
	declareErr error
	deliveries chan amqp091.Delivery
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp091.Table) error {
	return f.declareErr
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(string, string, string, bool, amqp091.Table) error { return nil }

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp091.Table) (<-chan amqp091.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type ackRecorder struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue []bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5672: connect: connection refused"), true},
		{"closed connection", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"amqp closed", amqp091.ErrClosed, true},
		{"bad scheme", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'"), false},
		{"other", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestNewClientWithChannel_SetupError(t *testing.T) {
	_, err := newClientWithChannel(&fakeChannel{declareErr: errors.New("denied")}, "ex", "q", nil)
	if err == nil {
		t.Fatal("expected setup error")
	}
}

func TestDial_PermanentErrorStopsRetrying(t *testing.T) {
	start := time.Now()
	_, err := dial(context.Background(), "http://not-amqp", 10*time.Second)
	if err == nil {
		t.Fatal("expected error for invalid scheme")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("permanent error should not be retried")
	}
}

func TestClient_Subscriber_Publishes(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClientWithChannel(ch, "spese", "expense_recorded", nil)
	if err != nil {
		t.Fatalf("newClientWithChannel: %v", err)
	}

	h := c.Subscriber(func() decimal.Decimal { return decimal.RequireFromString("379.5") })
	e := core.NewExpense("variable", "Food", decimal.RequireFromString("120.50"))
	if err := h(context.Background(), e); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	pub := ch.published[0]
	if ch.keys[0] != "expense_recorded" {
		t.Errorf("routing key = %q", ch.keys[0])
	}
	if pub.ContentType != "application/json" || pub.DeliveryMode != amqp091.Persistent || pub.MessageId == "" {
		t.Errorf("unexpected publishing: %+v", pub)
	}

	msg, err := ExpenseRecordedMessageFromJSON(pub.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Name != "Food" || msg.Category != core.Variable || !msg.Amount.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("unexpected message: %+v", msg)
	}
	if !msg.RemainingBudget.Equal(decimal.RequireFromString("379.5")) {
		t.Errorf("remaining = %s", msg.RemainingBudget)
	}
}

func TestClient_PublishError(t *testing.T) {
	c, _ := newClientWithChannel(&fakeChannel{publishErr: amqp091.ErrClosed}, "ex", "q", nil)
	err := c.PublishExpenseRecorded(context.Background(), NewExpenseRecordedMessage(core.NewExpense("fixed", "Rent", decimal.NewFromInt(1)), decimal.Zero))
	if !errors.Is(err, amqp091.ErrClosed) {
		t.Fatalf("expected wrapped ErrClosed, got %v", err)
	}
}

func TestClient_ConsumeAcksAndNacks(t *testing.T) {
	deliveries := make(chan amqp091.Delivery, 3)
	ch := &fakeChannel{deliveries: deliveries}
	c, _ := newClientWithChannel(ch, "ex", "q", nil)
	acks := &ackRecorder{}

	good, _ := NewExpenseRecordedMessage(core.NewExpense("fixed", "Rent", decimal.NewFromInt(500)), decimal.NewFromInt(500)).ToJSON()
	failing, _ := NewExpenseRecordedMessage(core.NewExpense("fixed", "Fail", decimal.NewFromInt(1)), decimal.Zero).ToJSON()
	deliveries <- amqp091.Delivery{Acknowledger: acks, Body: good}
	deliveries <- amqp091.Delivery{Acknowledger: acks, Body: []byte("{not json")}
	deliveries <- amqp091.Delivery{Acknowledger: acks, Body: failing}
	close(deliveries)

	var handled []string
	err := c.ConsumeExpenseRecorded(context.Background(), func(_ context.Context, m *ExpenseRecordedMessage) error {
		handled = append(handled, m.Name)
		if m.Name == "Fail" {
			return errors.New("sheet unavailable")
		}
		return nil
	})

	if err == nil || err.Error() != "message channel closed" {
		t.Fatalf("expected channel closed error, got %v", err)
	}
	if len(handled) != 2 {
		t.Fatalf("handled = %v", handled)
	}
	if acks.acks != 1 || acks.nacks != 2 {
		t.Fatalf("acks=%d nacks=%d", acks.acks, acks.nacks)
	}
	if acks.requeue[0] || !acks.requeue[1] {
		t.Fatalf("malformed must be dropped and failures requeued, got %v", acks.requeue)
	}
}

func TestClient_ConsumeStopsOnContext(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery)}
	c, _ := newClientWithChannel(ch, "ex", "q", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.ConsumeExpenseRecorded(ctx, func(context.Context, *ExpenseRecordedMessage) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClient_Close(t *testing.T) {
	ch := &fakeChannel{}
	c, _ := newClientWithChannel(ch, "ex", "q", nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ch.closed {
		t.Fatal("channel not closed")
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping without connection: %v", err)
	}
}

func TestExpenseRecordedMessage_JSON(t *testing.T) {
	orig := NewExpenseRecordedMessage(core.NewExpense("other", "Misc", decimal.NewFromInt(10)), decimal.RequireFromString("369.5"))
	if orig.ID == "" || orig.Timestamp.IsZero() {
		t.Fatalf("message should carry id and timestamp: %+v", orig)
	}

	data, err := orig.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := ExpenseRecordedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	e := got.Expense()
	if e.Name != "Misc" || e.Category != core.Variable || !e.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected expense %+v", e)
	}
}

func TestExpenseRecordedMessage_InvalidJSON(t *testing.T) {
	if _, err := ExpenseRecordedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
