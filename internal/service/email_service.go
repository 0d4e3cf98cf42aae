package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendStudentInvitation sends a new student their login credentials
func (s *EmailService) SendStudentInvitation(toEmail, studentName, coachName, username, password string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invitation to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s invited you to ChessCoach", coachName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d5a3d; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.credentials { background-color: #fff; border: 1px solid #ddd; padding: 15px; border-radius: 5px; font-family: monospace; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2d5a3d; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to ChessCoach</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>%s has set up a ChessCoach account for you. You can now solve the puzzles your coach assigns and join live classes.</p>
			<p>Your login credentials:</p>
			<div class="credentials">
				<p>Username: <strong>%s</strong></p>
				<p>Password: <strong>%s</strong></p>
			</div>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Log In</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from ChessCoach. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, studentName, coachName, username, password, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

%s has set up a ChessCoach account for you. You can now solve the puzzles your coach assigns and join live classes.

Your login credentials:
  Username: %s
  Password: %s

Log in: %s/login

---
This is an automated email from ChessCoach. Please do not reply.
`, studentName, coachName, username, password, s.appBaseURL)

	return s.sendEmail(context.TODO(), toEmail, subject, htmlBody, textBody)
}

// SendClassScheduled notifies an enrolled student about an upcoming class
func (s *EmailService) SendClassScheduled(toEmail, studentName, className string, startTime time.Time, timezone string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): class notification to %s", toEmail)
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	when := startTime.In(loc).Format("Monday, January 2, 2006 at 3:04 PM MST")

	subject := fmt.Sprintf("Upcoming class: %s", className)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d5a3d; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2d5a3d; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Class Scheduled</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your coach has scheduled a class for you:</p>
			<p><strong>%s</strong><br>%s</p>
			<p>Log in a few minutes early so you can join as soon as the class opens.</p>
			<p style="text-align: center;">
				<a href="%s/classes" class="button">View Classes</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from ChessCoach. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, studentName, className, when, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your coach has scheduled a class for you:

  %s
  %s

Log in a few minutes early so you can join as soon as the class opens.

View your classes: %s/classes

---
This is an automated email from ChessCoach. Please do not reply.
`, studentName, className, when, s.appBaseURL)

	return s.sendEmail(context.TODO(), toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
