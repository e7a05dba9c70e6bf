package webhookpubsub

import "errors"

var (
	// ErrUnknownWebhookAction specifies that the given string does not represent
	// any known action.
	ErrUnknownWebhookAction = errors.New("action is unknown")
	// ErrInvalidEndpoint is returned when the webhook endpoint is not a valid
	// URI.
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid URI")
	// ErrWebhookNotFound ...
	ErrWebhookNotFound = errors.New("webhook not found")
)
