package email

// Provider sends notification mail to parents.
type Provider interface {
	Send(to []string, subject, body string) error
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}
