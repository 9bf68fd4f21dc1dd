package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"gopkg.in/gomail.v2"

	"gatherly-api/config"
	"gatherly-api/models"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer

	// In-memory storage for verification codes
	verificationCodes map[string]VerificationCode
	mutex             sync.RWMutex
}

type VerificationCode struct {
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	service := &EmailService{
		config:            cfg,
		dialer:            dialer,
		verificationCodes: make(map[string]VerificationCode),
	}

	// Start cleanup goroutine
	go service.cleanupExpiredCodes()

	return service
}

// Generate a random 4-digit verification code
func (es *EmailService) generateVerificationCode() string {
	const digits = "0123456789"
	code := make([]byte, 4)

	for i := range code {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		code[i] = digits[num.Int64()]
	}

	return string(code)
}

// getOrCreateCode reuses a valid unused code for the email or issues a
// new one with a 10 minute expiry.
func (es *EmailService) getOrCreateCode(email string) string {
	es.mutex.RLock()
	existing, exists := es.verificationCodes[email]
	es.mutex.RUnlock()

	if exists && !existing.Used && time.Now().Before(existing.ExpiresAt) {
		fmt.Printf("📧 Reusing existing verification code for %s: %s\n", email, existing.Code)
		return existing.Code
	}

	code := es.generateVerificationCode()
	es.mutex.Lock()
	es.verificationCodes[email] = VerificationCode{
		Code:      code,
		Email:     email,
		ExpiresAt: time.Now().Add(10 * time.Minute),
		Used:      false,
	}
	es.mutex.Unlock()
	fmt.Printf("📧 Generated new verification code for %s: %s\n", email, code)
	return code
}

func (es *EmailService) send(to, subject, textBody, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends a registration verification code
func (es *EmailService) SendVerificationEmail(email, name string) (string, error) {
	code := es.getOrCreateCode(email)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #6f42c1; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .code { background: #e9ecef; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0; }
        .code-number { font-size: 32px; font-weight: bold; color: #6f42c1; letter-spacing: 8px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎉 Gatherly</h1>
            <p>Email Verification</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>Welcome to Gatherly! Please verify your email address to complete your registration.</p>

            <div class="code">
                <p><strong>Your verification code is:</strong></p>
                <div class="code-number">%s</div>
                <p><small>This code will expire in 10 minutes.</small></p>
            </div>

            <p>If you didn't create an account with Gatherly, please ignore this email.</p>

            <p><strong>The Gatherly Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, name, code)

	textBody := fmt.Sprintf(`
Hello %s!

Welcome to Gatherly! Please verify your email address to complete your registration.

Your verification code is: %s

This code will expire in 10 minutes.

If you didn't create an account with Gatherly, please ignore this email.

The Gatherly Team
`, name, code)

	if err := es.send(email, "Gatherly - Email Verification", textBody, htmlBody); err != nil {
		return "", err
	}

	fmt.Printf("📧 Verification email sent to %s with code: %s\n", email, code)
	return code, nil
}

// Verify the code
func (es *EmailService) VerifyCode(email, inputCode string) bool {
	es.mutex.RLock()
	storedCode, exists := es.verificationCodes[email]
	es.mutex.RUnlock()

	if !exists {
		fmt.Printf("❌ No verification code found for email: %s\n", email)
		return false
	}

	if storedCode.Used {
		fmt.Printf("❌ Verification code already used for: %s\n", email)
		return false
	}

	if time.Now().After(storedCode.ExpiresAt) {
		fmt.Printf("❌ Verification code expired for: %s\n", email)
		es.mutex.Lock()
		delete(es.verificationCodes, email)
		es.mutex.Unlock()
		return false
	}

	if storedCode.Code != inputCode {
		fmt.Printf("❌ Invalid verification code for %s\n", email)
		return false
	}

	// Mark as used
	es.mutex.Lock()
	storedCode.Used = true
	es.verificationCodes[email] = storedCode
	es.mutex.Unlock()

	fmt.Printf("✅ Verification code verified successfully for: %s\n", email)
	return true
}

// Get verification code for testing/debugging
func (es *EmailService) GetVerificationCode(email string) string {
	es.mutex.RLock()
	defer es.mutex.RUnlock()

	if code, exists := es.verificationCodes[email]; exists && !code.Used && time.Now().Before(code.ExpiresAt) {
		return code.Code
	}
	return ""
}

// Cleanup expired verification codes
func (es *EmailService) cleanupExpiredCodes() {
	ticker := time.NewTicker(5 * time.Minute) // Run every 5 minutes
	defer ticker.Stop()

	for range ticker.C {
		es.mutex.Lock()
		now := time.Now()
		for email, code := range es.verificationCodes {
			if now.After(code.ExpiresAt) || code.Used {
				delete(es.verificationCodes, email)
			}
		}
		es.mutex.Unlock()
	}
}

// SendWelcomeEmail is sent after successful verification
func (es *EmailService) SendWelcomeEmail(email, name string) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: linear-gradient(135deg, #6f42c1, #4b2e83); color: white; padding: 30px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .feature { background: white; padding: 20px; margin: 15px 0; border-radius: 8px; border-left: 4px solid #6f42c1; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎉 Welcome to Gatherly!</h1>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>Your email has been verified and your Gatherly account is now active.</p>

            <div class="feature">
                <h4>📅 Discover Events</h4>
                <p>Browse events near you, online or in person, and RSVP in one tap.</p>
            </div>

            <div class="feature">
                <h4>👥 Join Groups</h4>
                <p>Find communities around the things you love.</p>
            </div>

            <div class="feature">
                <h4>✨ Get Recommendations</h4>
                <p>We'll suggest events that match your interests and neighborhood.</p>
            </div>

            <p><strong>The Gatherly Team</strong></p>
        </div>
    </div>
</body>
</html>`, name)

	textBody := fmt.Sprintf(`
Hello %s!

Your email has been verified and your Gatherly account is now active.

📅 Discover Events - browse events near you, online or in person, and RSVP in one tap.
👥 Join Groups - find communities around the things you love.
✨ Get Recommendations - we'll suggest events that match your interests and neighborhood.

The Gatherly Team
`, name)

	if err := es.send(email, "Welcome to Gatherly! 🎉", textBody, htmlBody); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	fmt.Printf("📧 Welcome email sent to %s\n", email)
	return nil
}

// SendPasswordResetEmail sends a password reset verification code
func (es *EmailService) SendPasswordResetEmail(email, name string) (string, error) {
	code := es.getOrCreateCode(email)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .code-box { background: white; border: 2px dashed #667eea; padding: 20px; text-align: center; margin: 20px 0; border-radius: 8px; }
        .code { font-size: 32px; font-weight: bold; color: #667eea; letter-spacing: 8px; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🔐 Password Reset Request</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <p>We received a request to reset your password for your Gatherly account.</p>

            <div class="code-box">
                <p style="margin: 0; color: #666;">Your verification code is:</p>
                <div class="code">%s</div>
                <p style="margin: 10px 0 0 0; color: #666; font-size: 14px;">This code will expire in 10 minutes</p>
            </div>

            <div class="warning">
                <strong>⚠️ Security Notice:</strong><br>
                If you didn't request a password reset, please ignore this email. Your password will remain unchanged.
            </div>
        </div>
    </div>
</body>
</html>
`, name, code)

	textBody := fmt.Sprintf(`
Hi %s!

We received a request to reset your password for your Gatherly account.

Your verification code is: %s

This code will expire in 10 minutes.

If you didn't request a password reset, please ignore this email. Your password will remain unchanged.

The Gatherly Team
`, name, code)

	if err := es.send(email, "Password Reset - Gatherly", textBody, htmlBody); err != nil {
		return "", fmt.Errorf("failed to send password reset email: %w", err)
	}

	fmt.Printf("🔐 Password reset email sent to %s with code: %s\n", email, code)
	return code, nil
}

// SendPasswordChangedEmail sends a confirmation after password is changed
func (es *EmailService) SendPasswordChangedEmail(email, name string) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #28a745 0%%, #20c997 100%%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .success-box { background: #d4edda; border-left: 4px solid #28a745; padding: 15px; margin: 20px 0; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>✅ Password Changed</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <div class="success-box">
                <strong>✓ Success!</strong><br>
                Your password has been changed successfully.
            </div>
            <p>You can now log in to your Gatherly account using your new password.</p>
        </div>
    </div>
</body>
</html>
`, name)

	textBody := fmt.Sprintf(`
Hi %s!

Your password has been changed successfully.

You can now log in to your Gatherly account using your new password.

The Gatherly Team
`, name)

	if err := es.send(email, "Password Changed Successfully - Gatherly", textBody, htmlBody); err != nil {
		return fmt.Errorf("failed to send password changed email: %w", err)
	}

	fmt.Printf("✅ Password changed confirmation email sent to %s\n", email)
	return nil
}

// SendRSVPConfirmationEmail confirms an RSVP to the attendee
func (es *EmailService) SendRSVPConfirmationEmail(email, name string, event *models.Event) error {
	where := event.LocationName
	if event.LocationType == models.LocationTypeOnline {
		where = "Online"
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #6f42c1; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .event { background: white; padding: 20px; margin: 15px 0; border-radius: 8px; border-left: 4px solid #6f42c1; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎟️ You're going!</h1>
        </div>
        <div class="content">
            <p>Hi %s,</p>
            <p>Your RSVP is confirmed.</p>
            <div class="event">
                <h3>%s</h3>
                <p>📅 %s</p>
                <p>📍 %s</p>
            </div>
            <p><strong>The Gatherly Team</strong></p>
        </div>
    </div>
</body>
</html>
`, name, event.Title, event.DateAndTime.Format("Monday, January 2, 2006 at 3:04 PM"), where)

	textBody := fmt.Sprintf(`
Hi %s!

Your RSVP is confirmed.

%s
📅 %s
📍 %s

The Gatherly Team
`, name, event.Title, event.DateAndTime.Format("Monday, January 2, 2006 at 3:04 PM"), where)

	if err := es.send(email, fmt.Sprintf("RSVP Confirmed: %s", event.Title), textBody, htmlBody); err != nil {
		return fmt.Errorf("failed to send RSVP confirmation email: %w", err)
	}

	fmt.Printf("🎟️ RSVP confirmation email sent to %s for event %s\n", email, event.ID)
	return nil
}
