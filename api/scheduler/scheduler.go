package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
	templates "github.com/referloop/referral-api/templates/html"
)

// Scheduler handles the periodic weekly referrer digest job. Reward expiry is
// not swept here; it is applied lazily when rewards are read.
type Scheduler struct {
	cron       *cron.Cron
	UDB        databases.UserDatabase
	LDB        databases.ReferralLinkDatabase
	CVDB       databases.ConversionDatabase
	LockDB     databases.JobLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	uDB databases.UserDatabase,
	lDB databases.ReferralLinkDatabase,
	cvDB databases.ConversionDatabase,
	lockDB databases.JobLockDatabase,
) *Scheduler {
	// Heroku sets DYNO to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		UDB:        uDB,
		LDB:        lDB,
		CVDB:       cvDB,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Weekly referrer digest, Mondays at 8 AM UTC
	_, err := s.cron.AddFunc("0 8 * * 1", s.sendWeeklyDigests)
	if err != nil {
		zap.S().Errorw("failed to register weekly digest job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Referral scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Referral scheduler stopped")
}

// sendWeeklyDigests emails each referrer a summary of the past week's link
// activity. Referrers with no links are skipped.
func (s *Scheduler) sendWeeklyDigests() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "weekly_digest_job", s.instanceID, 15*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for weekly digest job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Weekly digest job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "weekly_digest_job", s.instanceID)

	zap.S().Infow("Running weekly digest job", "instance", s.instanceID)

	referrers, err := s.UDB.Find(ctx, bson.M{"role": models.RoleReferrer})
	if err != nil {
		zap.S().Errorw("failed to find referrers", "error", err)
		return
	}

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	sent := 0
	for _, referrer := range referrers {
		if referrer.Email == "" {
			continue
		}

		links, err := s.LDB.Find(ctx, bson.M{"referrerId": referrer.ID})
		if err != nil {
			zap.S().Errorw("failed to find referral links", "error", err, "userId", referrer.ID.Hex())
			continue
		}
		if len(links) == 0 {
			continue
		}

		var totalClicks, totalConversions int64
		for _, l := range links {
			totalClicks += l.Clicks
			totalConversions += l.Conversions
		}

		weekConversions, err := s.CVDB.CountDocuments(ctx, bson.M{
			"referrerId":  referrer.ID,
			"status":      models.ConversionStatusCompleted,
			"completedAt": bson.M{"$gte": weekAgo},
		})
		if err != nil {
			zap.S().Errorw("failed to count weekly conversions", "error", err, "userId", referrer.ID.Hex())
			continue
		}

		if err := s.sendDigestEmail(referrer, len(links), totalClicks, totalConversions, weekConversions); err != nil {
			zap.S().Errorw("failed to send digest email", "error", err, "userId", referrer.ID.Hex())
			continue
		}
		sent++
	}

	zap.S().Infow("Weekly digest job complete", "referrers", len(referrers), "sent", sent)
}

func (s *Scheduler) sendDigestEmail(referrer models.User, linkCount int, totalClicks, totalConversions, weekConversions int64) error {
	subject := "Your weekly referral summary"
	body := fmt.Sprintf(
		"Hi %s,\n\nHere is how your referral links performed:\n\n"+
			"Active links: %d\nTotal clicks: %d\nTotal conversions: %d\n"+
			"Conversions this week: %d\n\nLog in to see the full breakdown.",
		referrer.Name, linkCount, totalClicks, totalConversions, weekConversions,
	)

	from := mail.NewEmail("ReferLoop", "no-reply@referloop.io")
	to := mail.NewEmail(referrer.Name, referrer.Email)
	message := mail.NewSingleEmail(from, subject, to, body, templates.RenderGenericEmail(subject, body))
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}
