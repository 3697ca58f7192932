package pagination_test

import (
	"testing"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)
	id := "9f2c1e9a-1111-4222-8333-444455556666"

	token := pagination.EncodeToken(ts, id)
	gotTS, gotID, err := pagination.DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, ts.Equal(gotTS))
	assert.Equal(t, id, gotID)
}

func TestDecodeToken_InvalidBase64(t *testing.T) {
	_, _, err := pagination.DecodeToken("not-base64!!!")
	assert.Error(t, err)
}

func TestDecodeToken_MissingSeparator(t *testing.T) {
	_, _, err := pagination.DecodeToken("bm8tc2VwYXJhdG9y") // "no-separator"
	assert.Error(t, err)
}
