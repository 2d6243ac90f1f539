package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendIngestionFailureAlert(toEmail, fileName, documentId, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendIngestionFailureAlert(toEmail, fileName, documentId, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Document analysis failed: %s", fileName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Document analysis failed</h2>
			<p>The analysis pipeline could not process the following document:</p>
			<p><strong>File:</strong> %s</p>
			<p><strong>Document ID:</strong> %s</p>
			<p><strong>Reason:</strong></p>
			<pre style="background-color: #f5f5f5; padding: 10px; border-radius: 5px;">%s</pre>
			<p>The document is marked failed and can be reprocessed from the dashboard.</p>
		</div>
	`, fileName, documentId, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send failure alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Failure alert sent to %s\n", toEmail)
	return nil
}
