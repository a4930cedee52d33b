package mail

import (
	"fmt"
	"net/smtp"
)

type Conf struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewConf(host, port, username, password, from string) (*Conf, error) {
	if host == "" {
		return nil, fmt.Errorf("smtp host is empty")
	}
	if port == "" {
		port = "587"
	}
	if from == "" {
		from = "no-reply@storefront.local"
	}
	return &Conf{host: host, port: port, username: username, password: password, from: from}, nil
}

func (c *Conf) SendOrderConfirmation(to, orderID string) error {
	subject := "Order Confirmation"
	body := fmt.Sprintf("Thank you for your order! Your order ID is %s. We are processing it now.", orderID)

	message := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	if err := smtp.SendMail(c.host+":"+c.port, auth, c.from, []string{to}, message); err != nil {
		return fmt.Errorf("sending confirmation for order %s: %w", orderID, err)
	}
	return nil
}
