package utils

import (
	"net/smtp"
	"os"
)

func SendMail(email string, message []byte) error {
	from := "pagos.cbta71@gmail.com"
	password := os.Getenv("GOOGLE_SMTP_MDP")
	to := email

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message)
	if err != nil {
		LogError(err, "Error sending email to "+email)
		return err
	}

	LogSuccess("Email sent to " + email)
	return nil
}
