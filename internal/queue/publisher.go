package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Publisher sends reservation events to a broker.
type Publisher interface {
    Publish(ctx context.Context, ev ReservationEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

// AMQPPublisher publishes ReservationEvents to the reservation.events queue.
// Each call opens its own connection so a broker outage never leaves a
// broken channel behind; errors are logged and returned so the caller can
// choose to ignore them.  Messages are marked as persistent.
type AMQPPublisher struct {
    URL string
    log *logrus.Entry
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, log *logrus.Logger) *AMQPPublisher {
    if log == nil {
        log = logrus.StandardLogger()
    }
    return &AMQPPublisher{URL: url, log: log.WithField("component", "rabbitmq-publisher")}
}

// Publish declares the queue (idempotent) and publishes ev as JSON.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ReservationEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        p.log.WithError(err).Warn("dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.WithError(err).Warn("channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        QueueName, // name
        true,      // durable
        false,     // autoDelete
        false,     // exclusive
        false,     // noWait
        nil,       // args
    ); err != nil {
        p.log.WithError(err).Warn("queue declare failed")
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        p.log.WithError(err).Warn("marshal event failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",        // default exchange
        QueueName, // routing key = queue name
        false,     // mandatory
        false,     // immediate
        pub,
    ); err != nil {
        p.log.WithError(err).Warn("publish failed")
        return err
    }
    p.log.WithFields(logrus.Fields{
        "type":           ev.Type,
        "reservation_id": ev.ReservationID,
    }).Debug("event published")
    return nil
}
