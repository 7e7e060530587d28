package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventLogFile is the file, inside the consumer's directory, that receives
// one line per event.
const EventLogFile = "events.log"

// StartEventConsumer appends every event on the school queue to
// dir/events.log.  Broker outages are retried with a capped exponential
// delay; it returns only once ctx is done.
func StartEventConsumer(ctx context.Context, url, dir string) error {
	delay := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warnf("event-consumer: dial: %v (next attempt in %s)", err, delay)
			wait(ctx, delay)
			delay = min(2*delay, 30*time.Second)
			continue
		}
		delay = time.Second

		err = drain(ctx, conn, dir)
		_ = conn.Close()
		if ctx.Err() == nil {
			log.Warnf("event-consumer: lost broker: %v", err)
			wait(ctx, 2*time.Second)
		}
	}
	return ctx.Err()
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// drain consumes deliveries on one connection until it breaks or ctx ends.
// Malformed events are dropped, not requeued.
func drain(ctx context.Context, conn *amqp.Connection, dir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declare(ch); err != nil {
		return fmt.Errorf("declare %s: %w", QueueName, err)
	}
	if err := ch.Qos(50, 0, false); err != nil {
		log.Warnf("event-consumer: qos: %v", err)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, QueueName, "school-event-log", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", QueueName, err)
	}

	for d := range deliveries {
		if err := handleMessage(dir, d.Body); err != nil {
			log.Errorf("event-consumer: drop message: %v", err)
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("delivery channel closed")
}

func handleMessage(dir string, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, EventLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders ev as a single human-friendly line.
func formatLine(ev Event) string {
	parts := []string{fmt.Sprintf("[%s] %s", ev.OccurredAt, ev.Type)}
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("instrument_id", ev.InstrumentID)
	add("student_id", ev.StudentID)
	add("payment_id", ev.PaymentID)
	add("attendance_id", ev.AttendanceID)
	add("month", ev.Month)
	add("date", ev.Date)
	if ev.Paid != nil {
		add("paid", fmt.Sprint(*ev.Paid))
	}
	if ev.Present != nil {
		add("present", fmt.Sprint(*ev.Present))
	}
	if ev.Detail != "" {
		add("detail", fmt.Sprintf("%q", ev.Detail))
	}
	return strings.Join(parts, " | ") + "\n"
}
