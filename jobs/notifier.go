package jobs

import (
	"context"
	"fmt"
)

// EmailNotifier enqueues transactional emails for the domain services. It
// satisfies the Notifier ports declared by the members and interests
// packages, so enqueue failures never fail the triggering operation there.
type EmailNotifier struct {
	client *Client
}

// NewEmailNotifier constructs an EmailNotifier.
func NewEmailNotifier(client *Client) *EmailNotifier {
	return &EmailNotifier{client: client}
}

// NotifyMemberApproved emails a member that their registration was approved.
func (n *EmailNotifier) NotifyMemberApproved(ctx context.Context, email, fullName string) error {
	_, err := n.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      email,
		Subject: "Your NACOS membership has been approved",
		Body:    fmt.Sprintf("Hello %s,\n\nYour NACOS membership has been approved. You can now take part in all association activities.\n\nNACOS Executive Team", fullName),
	})
	return err
}

// NotifyInterestDecision emails a partnership contact about the decision on
// their enquiry.
func (n *EmailNotifier) NotifyInterestDecision(ctx context.Context, email, organisation, status string) error {
	subject := "Update on your partnership enquiry"
	body := fmt.Sprintf("Hello,\n\nYour partnership enquiry on behalf of %s has been %s.\n\nNACOS Executive Team", organisation, status)
	_, err := n.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      email,
		Subject: subject,
		Body:    body,
	})
	return err
}
