package store

import (
	"testing"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/stretchr/testify/assert"
)

func TestStateKey(t *testing.T) {
	assert.Equal(t, "state:Google:MALWARE", StateKey(models.VendorGoogle, ThreatMalware))
	assert.Equal(t, "state:Yandex:SOCIAL_ENGINEERING", StateKey(models.VendorYandex, ThreatSocialEngineering))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "42")
	assert.Equal(t, 42, GetEnvInt("TEST_ENV_INT", 7))
	assert.Equal(t, 7, GetEnvInt("TEST_ENV_INT_UNSET", 7))
}
