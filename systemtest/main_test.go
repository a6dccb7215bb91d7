package systemtest

import (
	"testing"

	internalhttp "github.com/EternisAI/momo-provisioner/internal/api/http"
	"github.com/EternisAI/momo-provisioner/internal/momo"
	"github.com/EternisAI/momo-provisioner/systemtest/provider"
	"github.com/EternisAI/momo-provisioner/systemtest/tests"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	subscriptionKey = "systemtest-primary-key"
	adminKey        = "systemtest-admin-key"
)

func TestSystemIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fake := provider.Start(subscriptionKey)
	defer fake.Close()

	p, err := momo.NewProvisioner(momo.Config{
		UserID:            uuid.NewString(),
		SubscriptionKey:   subscriptionKey,
		BaseURL:           fake.URL(),
		CallbackHost:      "webhook.example.com",
		TargetEnvironment: "sandbox",
		Headers:           map[string]string{"Cache-Control": "no-cache"},
	})
	require.NoError(t, err)

	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Provisioner: p,
		AdminAPIKey: adminKey,
	})

	t.Run("HealthCheck", func(t *testing.T) { tests.TestHealthCheck(t, engine) })
	t.Run("CredentialBootstrap", func(t *testing.T) { tests.TestCredentialBootstrap(t, engine, adminKey) })
}

func TestWrongSubscriptionKey(t *testing.T) {
	fake := provider.Start(subscriptionKey)
	defer fake.Close()

	p, err := momo.NewProvisioner(momo.Config{
		UserID:          uuid.NewString(),
		SubscriptionKey: "secondary-key-for-another-tier",
		BaseURL:         fake.URL(),
		CallbackHost:    "webhook.example.com",
	})
	require.NoError(t, err)

	_, err = p.Provision(t.Context())
	require.Error(t, err)
	require.Equal(t, momo.UnknownRemoteError, momo.KindOf(err))
	require.Len(t, fake.Requests(), 1)
}
