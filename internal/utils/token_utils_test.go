package utils_test

import (
	"testing"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenTestSecret = "test-secret-key-that-is-long-enough"

func TestJWTRoundTripCarriesRole(t *testing.T) {
	signed, err := utils.GenerateJWT("user-42", "ANALISTA_TRIBUTARIO", tokenTestSecret, time.Hour, "tax-events-test")
	require.NoError(t, err)

	claims, err := utils.ParseAndValidateJWT(signed, tokenTestSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "ANALISTA_TRIBUTARIO", claims.Role)
	assert.Equal(t, "tax-events-test", claims.Issuer)
}

func TestParseAndValidateJWT_WrongSecret(t *testing.T) {
	signed, err := utils.GenerateJWT("user-42", "AUDITOR_INTERNO", tokenTestSecret, time.Hour, "tax-events-test")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(signed, "a-different-secret-entirely-here")
	assert.Error(t, err)
}

func TestParseAndValidateJWT_Expired(t *testing.T) {
	signed, err := utils.GenerateJWT("user-42", "CORREDOR_BOLSA", tokenTestSecret, -time.Minute, "tax-events-test")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(signed, tokenTestSecret)
	assert.Error(t, err)
}
