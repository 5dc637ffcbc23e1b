package auth

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dmitrymomot/taskflow/pkg/email"
)

var otpEmailTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a;">
  <h2>{{.Heading}}</h2>
  <p>{{.Intro}}</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
  <p>This code expires in 5 minutes. If you did not request it, you can ignore this email.</p>
</body>
</html>`))

type otpEmailData struct {
	Heading string
	Intro   string
	Code    string
}

// buildOTPEmail renders the verification email for a record's purpose.
func buildOTPEmail(rec *VerificationRecord) (email.SendEmailParams, error) {
	var data otpEmailData
	var subject, tag string

	switch rec.Purpose {
	case PurposeForgotPassword:
		subject = "Reset your password"
		tag = "password-reset-otp"
		data = otpEmailData{
			Heading: "Password reset",
			Intro:   "Use this code to reset your password:",
			Code:    rec.OTPCode,
		}
	default:
		subject = "Confirm your email address"
		tag = "register-otp"
		data = otpEmailData{
			Heading: "Welcome to Taskflow",
			Intro:   "Use this code to finish creating your account:",
			Code:    rec.OTPCode,
		}
	}

	var body strings.Builder
	if err := otpEmailTmpl.Execute(&body, data); err != nil {
		return email.SendEmailParams{}, fmt.Errorf("failed to render otp email: %w", err)
	}

	return email.SendEmailParams{
		SendTo:   rec.Email,
		Subject:  subject,
		BodyHTML: body.String(),
		Tag:      tag,
	}, nil
}
