package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionlabs/vault-engine/internal/domain"
	"github.com/fractionlabs/vault-engine/internal/logger"
	"github.com/fractionlabs/vault-engine/internal/mocks"
	"github.com/fractionlabs/vault-engine/internal/providers/jetstream"
)

// testPublisherMocks contains all the mocks needed for testing the publisher
type testPublisherMocks struct {
	ctrl   *gomock.Controller
	nc     *mocks.MockNatsConn
	js     *mocks.MockJetStream
	natsJS *mocks.MockNatsJetStream
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	err := logger.Initialize(logger.Config{Debug: true})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		nc:     mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
		natsJS: mocks.NewMockNatsJetStream(ctrl),
	}
}

func tearDownTestPublisher(tm *testPublisherMocks) {
	tm.ctrl.Finish()
}

func testConfig() jetstream.Config {
	return jetstream.Config{
		URL:            "nats://localhost:4222",
		StreamName:     "VAULT_EVENTS",
		MaxReconnects:  10,
		ReconnectWait:  2 * time.Second,
		ConnectionName: "test-connection",
	}
}

func TestNewPublisher(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tearDownTestPublisher(tm)

	tm.natsJS.EXPECT().
		Connect(gomock.Eq("nats://localhost:4222"), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tm.nc, tm.js, nil)

	pub, err := jetstream.NewPublisher(testConfig(), tm.natsJS)
	require.NoError(t, err)
	require.NotNil(t, pub)
}

func TestNewPublisher_ConnectError(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tearDownTestPublisher(tm)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil, errors.New("connection refused"))

	_, err := jetstream.NewPublisher(testConfig(), tm.natsJS)
	assert.Error(t, err)
}

func TestPublisher_PublishEvent(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tearDownTestPublisher(tm)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tm.nc, tm.js, nil)

	pub, err := jetstream.NewPublisher(testConfig(), tm.natsJS)
	require.NoError(t, err)

	event := &domain.Event{
		EventID:   "01JG8EXAMPLE0000000000000X",
		Type:      domain.EventVaultFailed,
		VaultID:   "vault-1",
		Timestamp: time.Now().UTC(),
		Payload:   map[string]interface{}{"reason": "no_contributions"},
	}

	tm.js.EXPECT().
		Publish(gomock.Any(), "vaults.vault.failed", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, _ ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			var decoded domain.Event
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, event.EventID, decoded.EventID)
			assert.Equal(t, domain.EventVaultFailed, decoded.Type)
			assert.Equal(t, "vault-1", decoded.VaultID)
			return &natsjs.PubAck{Stream: "VAULT_EVENTS"}, nil
		})

	err = pub.PublishEvent(context.Background(), event)
	assert.NoError(t, err)
}

func TestPublisher_PublishEvent_SubjectPerEventType(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tearDownTestPublisher(tm)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tm.nc, tm.js, nil)

	pub, err := jetstream.NewPublisher(testConfig(), tm.natsJS)
	require.NoError(t, err)

	tests := []struct {
		eventType domain.EventType
		subject   string
	}{
		{domain.EventVaultLaunched, "vaults.vault.launched"},
		{domain.EventVaultSuccess, "vaults.vault.success"},
		{domain.EventClaimSettled, "vaults.distribution.claim_settled"},
		{domain.EventDistributionBatchComplete, "vaults.distribution.batch_complete"},
	}

	for _, tt := range tests {
		tm.js.EXPECT().
			Publish(gomock.Any(), tt.subject, gomock.Any()).
			Return(&natsjs.PubAck{}, nil)

		err := pub.PublishEvent(context.Background(), &domain.Event{
			EventID:   "01JG8EXAMPLE0000000000000X",
			Type:      tt.eventType,
			VaultID:   "vault-1",
			Timestamp: time.Now().UTC(),
		})
		assert.NoError(t, err, "subject %s", tt.subject)
	}
}

func TestPublisher_PublishEvent_BrokerError(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tearDownTestPublisher(tm)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tm.nc, tm.js, nil)

	pub, err := jetstream.NewPublisher(testConfig(), tm.natsJS)
	require.NoError(t, err)

	tm.js.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("no responders available"))

	err = pub.PublishEvent(context.Background(), &domain.Event{
		Type:    domain.EventVaultBurned,
		VaultID: "vault-1",
	})
	assert.Error(t, err)
}

func TestPublisher_Close(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tearDownTestPublisher(tm)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(tm.nc, tm.js, nil)
	tm.nc.EXPECT().Close()

	pub, err := jetstream.NewPublisher(testConfig(), tm.natsJS)
	require.NoError(t, err)

	pub.Close()
}
