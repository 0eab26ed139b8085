package service

import (
	"encoding/json"
	"log"

	"lms-backend/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationWorker consumes queued notifications from RabbitMQ and persists
// them off the request path.
type NotificationWorker struct {
	notificationService NotificationService
	rabbitMQ            *util.RabbitMQClient
	stopChan            chan bool
}

func NewNotificationWorker(notificationService NotificationService, rabbitMQ *util.RabbitMQClient) *NotificationWorker {
	return &NotificationWorker{
		notificationService: notificationService,
		rabbitMQ:            rabbitMQ,
		stopChan:            make(chan bool),
	}
}

// Start declares the exchange/queue pair and begins consuming
func (w *NotificationWorker) Start() error {
	if w.rabbitMQ == nil {
		return nil // RabbitMQ not available, worker will not start
	}

	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return nil
	}

	if err := channel.ExchangeDeclare(
		NotificationExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	queue, err := channel.QueueDeclare(
		NotificationQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	if err := channel.QueueBind(
		NotificationQueueName,
		NotificationRouteKey,
		NotificationExchange,
		false,
		nil,
	); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		queue.Name,
		"notification_worker",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		log.Println("Notification worker started, consuming messages...")
		for {
			select {
			case <-w.stopChan:
				log.Println("Notification worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Notification queue closed")
					return
				}
				if err := w.processMessage(msg); err != nil {
					log.Printf("Error processing notification message: %v", err)
					msg.Nack(false, true)
				} else {
					msg.Ack(false)
				}
			}
		}
	}()

	return nil
}

// Stop signals the consume loop to exit
func (w *NotificationWorker) Stop() {
	close(w.stopChan)
}

func (w *NotificationWorker) processMessage(msg amqp.Delivery) error {
	var notifMsg NotificationMessage
	if err := json.Unmarshal(msg.Body, &notifMsg); err != nil {
		return err
	}

	_, err := w.notificationService.CreateNotification(notifMsg.UserID, notifMsg.Message)
	return err
}
