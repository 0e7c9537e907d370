package mailer

import "sync"

// MockMailer records outgoing mail in memory instead of dialing SMTP.
type MockMailer struct {
	SendFunc func(recipient, templateFile string, data any) error

	mu   sync.Mutex
	sent []Email
}

type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	if m.SendFunc != nil {
		return m.SendFunc(recipient, templateFile, data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

// SentEmails returns a copy of everything sent so far.
func (m *MockMailer) SentEmails() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	sent := make([]Email, len(m.sent))
	copy(sent, m.sent)

	return sent
}

// Reset discards the record of sent emails.
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = nil
}
