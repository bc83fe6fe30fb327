package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/chat-registration/internal/config"
	"github.com/spec-kit/chat-registration/internal/domain"
	"github.com/spec-kit/chat-registration/internal/events"
	"github.com/spec-kit/chat-registration/internal/observability"
)

type fakeCRM struct {
	calls [][]domain.ContactProperty
	err   error
}

func (f *fakeCRM) CreateContact(_ context.Context, props []domain.ContactProperty) error {
	f.calls = append(f.calls, props)
	return f.err
}

type fakeChat struct {
	log        []string
	upserted   [][]domain.ChatUser
	channels   []domain.Channel
	upsertErr  error
	channelErr error
	tokenErr   error
}

func (f *fakeChat) UpsertUsers(_ context.Context, users ...domain.ChatUser) error {
	f.log = append(f.log, "upsert")
	f.upserted = append(f.upserted, users)
	return f.upsertErr
}

func (f *fakeChat) OpenChannel(_ context.Context, channelType, channelID string, members []string, _ string) (*domain.Channel, error) {
	f.log = append(f.log, "channel")
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	ch := domain.Channel{Type: channelType, ID: channelID, CID: channelType + ":" + channelID, Members: members}
	f.channels = append(f.channels, ch)
	return &ch, nil
}

func (f *fakeChat) CreateToken(userID string) (string, error) {
	f.log = append(f.log, "token")
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token-for-" + userID, nil
}

type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func testConfig() config.Config {
	return config.Config{
		Stream:  config.StreamConfig{APIKey: "stream-key"},
		HubSpot: config.HubSpotConfig{CustomProperty: "your_custom_property", CustomValue: "anything"},
		Support: config.SupportConfig{UserID: "adminId", UserName: "unique-admin-name"},
	}
}

func newTestService(crm *fakeCRM, chat *fakeChat, d events.Dispatcher) *RegistrationService {
	return NewRegistrationService(testConfig(), RegistrationDependencies{CRM: crm, Chat: chat, Dispatcher: d})
}

func TestRegisterSuccess(t *testing.T) {
	crm := &fakeCRM{}
	chat := &fakeChat{}
	d := &recordingDispatcher{}
	svc := newTestService(crm, chat, d)

	ctx := observability.WithRequestID(context.Background(), "req-1")
	result, err := svc.Register(ctx, domain.RegistrationRequest{FirstName: "Jo Ann", LastName: "Lee"})
	require.NoError(t, err)

	assert.Equal(t, &domain.RegistrationResult{
		CustomerID:    "jo_ann-lee",
		CustomerToken: "token-for-jo_ann-lee",
		ChannelID:     "jo_ann-lee",
		APIKey:        "stream-key",
	}, result)

	require.Len(t, crm.calls, 1)
	assert.Equal(t, []domain.ContactProperty{
		{Property: "firstname", Value: "Jo_Ann"},
		{Property: "lastname", Value: "Lee"},
		{Property: "your_custom_property", Value: "anything"},
	}, crm.calls[0])

	assert.Equal(t, []string{"upsert", "channel", "token"}, chat.log)
	assert.Equal(t, [][]domain.ChatUser{{
		{ID: "jo_ann-lee", Name: "Jo_Ann", Role: domain.ChatRoleUser},
		{ID: "adminId", Name: "unique-admin-name", Role: domain.ChatRoleAdmin},
	}}, chat.upserted)
	require.Len(t, chat.channels, 1)
	assert.Equal(t, domain.ChannelTypeMessaging, chat.channels[0].Type)
	assert.Equal(t, []string{"jo_ann-lee", "adminId"}, chat.channels[0].Members)

	require.Len(t, d.events, 1)
	assert.Equal(t, events.EventRegistrationCompleted, d.events[0].Type)
	assert.Equal(t, "jo_ann-lee", d.events[0].CustomerID)
	assert.Equal(t, "req-1", d.events[0].RequestID)
	assert.NotEmpty(t, d.events[0].ID)
}

func TestRegisterCRMFailureSkipsChat(t *testing.T) {
	crm := &fakeCRM{err: errors.New("hubspot api error (status 401): unauthorized")}
	chat := &fakeChat{}
	d := &recordingDispatcher{}
	svc := newTestService(crm, chat, d)

	_, err := svc.Register(context.Background(), domain.RegistrationRequest{FirstName: "Ada", LastName: "Lovelace"})
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.StepCreateContact, stepErr.Step)
	assert.Equal(t, "hubspot api error (status 401): unauthorized", err.Error())
	assert.Empty(t, chat.log)

	require.Len(t, d.events, 1)
	assert.Equal(t, events.EventRegistrationFailed, d.events[0].Type)
	payload, ok := d.events[0].Payload.(events.RegistrationFailedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.StepCreateContact, payload.FailedStep)
}

func TestRegisterUpsertFailureSkipsChannelAndToken(t *testing.T) {
	crm := &fakeCRM{}
	chat := &fakeChat{upsertErr: errors.New("upsert failed")}
	svc := newTestService(crm, chat, nil)

	_, err := svc.Register(context.Background(), domain.RegistrationRequest{FirstName: "Ada", LastName: "Lovelace"})

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.StepUpsertUsers, stepErr.Step)
	assert.Equal(t, []string{"upsert"}, chat.log)
	assert.Len(t, crm.calls, 1, "crm contact is not rolled back")
}

func TestRegisterChannelFailureSkipsToken(t *testing.T) {
	chat := &fakeChat{channelErr: errors.New("channel failed")}
	svc := newTestService(&fakeCRM{}, chat, nil)

	_, err := svc.Register(context.Background(), domain.RegistrationRequest{FirstName: "Ada", LastName: "Lovelace"})

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.StepOpenChannel, stepErr.Step)
	assert.Equal(t, []string{"upsert", "channel"}, chat.log)
}

func TestRegisterTokenFailure(t *testing.T) {
	tokenErr := errors.New("api secret not configured")
	chat := &fakeChat{tokenErr: tokenErr}
	svc := newTestService(&fakeCRM{}, chat, nil)

	_, err := svc.Register(context.Background(), domain.RegistrationRequest{FirstName: "Ada", LastName: "Lovelace"})

	assert.ErrorIs(t, err, tokenErr)
}

func TestRegisterTwiceYieldsSameCustomerID(t *testing.T) {
	crm := &fakeCRM{}
	svc := newTestService(crm, &fakeChat{}, nil)
	req := domain.RegistrationRequest{FirstName: "Grace", LastName: "Hopper"}

	first, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "grace-hopper", first.CustomerID)
	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.Len(t, crm.calls, 2)
}

func TestSupportIdentityIsStableAcrossRequests(t *testing.T) {
	chat := &fakeChat{}
	svc := newTestService(&fakeCRM{}, chat, nil)

	for _, name := range [][2]string{{"Ada", "Lovelace"}, {"Alan", "Turing"}} {
		_, err := svc.Register(context.Background(), domain.RegistrationRequest{FirstName: name[0], LastName: name[1]})
		require.NoError(t, err)
	}

	require.Len(t, chat.upserted, 2)
	for _, users := range chat.upserted {
		assert.Equal(t, domain.ChatUser{ID: "adminId", Name: "unique-admin-name", Role: domain.ChatRoleAdmin}, users[1])
	}
}

func TestDefaultSupportIdentity(t *testing.T) {
	cfg := testConfig()
	cfg.Support = config.SupportConfig{}

	svc := NewRegistrationService(cfg, RegistrationDependencies{CRM: &fakeCRM{}, Chat: &fakeChat{}})
	assert.Equal(t, domain.DefaultSupportIdentity, svc.Support())
}
