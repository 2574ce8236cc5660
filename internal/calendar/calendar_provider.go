package calendar

import "context"

// Provider is an external calendar. AddEntry returns the id of the created
// event, or an empty id when the provider does not keep one.
type Provider interface {
	AddEntry(ctx context.Context, absence Absence) (string, error)
	RemoveEntry(ctx context.Context, eventID string) error
}

// NoopProvider is used when no external calendar is configured.
type NoopProvider struct{}

func (NoopProvider) AddEntry(context.Context, Absence) (string, error) {
	return "", nil
}

func (NoopProvider) RemoveEntry(context.Context, string) error {
	return nil
}
