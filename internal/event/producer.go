package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	pkgkafka "github.com/dakshrana205/StudyNotionnew/pkg/kafka"
	"github.com/dakshrana205/StudyNotionnew/pkg/logger"
)

// Kafka topics for StudyNotion domain events.
const (
	TopicCourseEnrolled  = "studynotion.course.enrolled"
	TopicPaymentVerified = "studynotion.payment.verified"
	TopicRatingCreated   = "studynotion.rating.created"
)

// Aggregate types.
const (
	AggregateTypeCourse  = "course"
	AggregateTypePayment = "payment"
	AggregateTypeRating  = "rating"
)

// Source identifier for events originating from this service.
const SourceStudyNotion = "studynotion-service"

// CourseEnrolledData is the payload for a course.enrolled event.
type CourseEnrolledData struct {
	UserID     string `json:"user_id"`
	CourseID   string `json:"course_id"`
	ProgressID string `json:"progress_id"`
}

// PaymentVerifiedData is the payload for a payment.verified event.
type PaymentVerifiedData struct {
	OrderID   string   `json:"order_id"`
	PaymentID string   `json:"payment_id"`
	UserID    string   `json:"user_id"`
	CourseIDs []string `json:"course_ids"`
}

// RatingCreatedData is the payload for a rating.created event.
type RatingCreatedData struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	Rating   int    `json:"rating"`
}

// Publisher sends an event to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes StudyNotion domain events.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCourseEnrolled publishes a course.enrolled event.
func (p *Producer) PublishCourseEnrolled(ctx context.Context, userID, courseID, progressID string) error {
	data := CourseEnrolledData{UserID: userID, CourseID: courseID, ProgressID: progressID}
	if err := p.publish(ctx, TopicCourseEnrolled, courseID, AggregateTypeCourse, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published course.enrolled event",
		slog.String("user_id", userID),
		slog.String("course_id", courseID),
	)
	return nil
}

// PublishPaymentVerified publishes a payment.verified event.
func (p *Producer) PublishPaymentVerified(ctx context.Context, data PaymentVerifiedData) error {
	if data.CourseIDs == nil {
		data.CourseIDs = []string{}
	}
	if err := p.publish(ctx, TopicPaymentVerified, data.PaymentID, AggregateTypePayment, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published payment.verified event",
		slog.String("order_id", data.OrderID),
		slog.String("payment_id", data.PaymentID),
		slog.Int("courses", len(data.CourseIDs)),
	)
	return nil
}

// PublishRatingCreated publishes a rating.created event.
func (p *Producer) PublishRatingCreated(ctx context.Context, rating *domain.Rating) error {
	data := RatingCreatedData{
		ID:       rating.ID,
		UserID:   rating.UserID,
		CourseID: rating.CourseID,
		Rating:   rating.Rating,
	}
	if err := p.publish(ctx, TopicRatingCreated, rating.ID, AggregateTypeRating, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published rating.created event",
		slog.String("rating_id", rating.ID),
		slog.String("course_id", rating.CourseID),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStudyNotion, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
